package server

import (
	"context"
	"fmt"

	"consumerwise/internal/client"
	"consumerwise/internal/misc"
	"consumerwise/internal/model"
)

// notify pushes a product announcement to every retailer device. Delivery is
// best effort: failures are logged, never retried.
func (s Server) notify(ctx context.Context, i model.Item, isNew bool) {
	productName := misc.StringLimit(i.ProductName, 45)
	s.Logger.Debugf("notify: Finding Retailer devices for Item: %s, ID: %s", productName, i.ID)
	rts, err := s.DB.RetailersFindAll(ctx)
	if err != nil {
		s.Logger.Errorf("notify: Error getting Retailers for Item ID: %s, err: %v", i.ID, err)
		return
	}

	var fcmTokens []string
	for _, rt := range rts {
		for _, d := range rt.Devices {
			if d.FCMToken != "" {
				fcmTokens = append(fcmTokens, d.FCMToken)
			}
		}
	}
	if len(fcmTokens) == 0 {
		s.Logger.Debugf("notify: No Retailer devices to notify for Item: %s, ID: %s", productName, i.ID)
		return
	}

	title := fmt.Sprintf("%s has added a new product!", i.CompanyName)
	if !isNew {
		title = fmt.Sprintf("%s has updated a product!", i.CompanyName)
	}
	fcmReq := client.FCMSendRequest{
		Notification: client.FCMNotification{
			Title:       title,
			Body:        productName,
			ClickAction: "FLUTTER_NOTIFICATION_CLICK",
			Sound:       "default",
		},
		Data:            client.FCMData{ProductID: i.ID},
		RegistrationIDs: fcmTokens,
	}
	s.Logger.Infof("notify: Sending notification to %d Device(s) for Item: %s, ID: %s",
		len(fcmTokens), productName, i.ID)
	s.Logger.Debugf("notify: FCMSendRequest for Item: %s, ID: %s, req: %+v", productName, i.ID, fcmReq)
	fcmResp, err := s.Client.FCMSendNotification(fcmReq)
	if err != nil {
		s.Logger.Errorf("notify: Error sending notification to FCM for Item: %s, ID: %s, FCMSendRequest: %+v, err: %v",
			productName, i.ID, fcmReq, err)
		return
	}
	s.Logger.Infof("notify: Send notification results for Item: %s, ID: %s, success: %d, failure: %d",
		productName, i.ID, fcmResp.Success, fcmResp.Failure)
	s.Logger.Debugf("notify: FCMSendResponse for Item: %s, ID: %s, resp: %+v", productName, i.ID, fcmResp)
}
