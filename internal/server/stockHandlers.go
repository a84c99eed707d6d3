package server

import (
	"context"
	"encoding/json"
	"net/http"

	"consumerwise/internal/database"
	"consumerwise/internal/feed"
	"consumerwise/internal/model"
	"consumerwise/internal/projector"

	"github.com/gorilla/mux"
)

func (s Server) stockGet() http.HandlerFunc {
	type response struct {
		Stocks []model.StockEntry `json:"stocks"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		sc, err := getSessionContext(r.Context())
		if err != nil {
			s.Logger.Errorf("stockGet: Error getting sessionContext, err: %v", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		retailerID := mux.Vars(r)["retailerID"]
		if retailerID != sc.session.SubjectID {
			s.Logger.Debugf("stockGet: Retailer %s requested stocks of Retailer %s", sc.session.SubjectID, retailerID)
			http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
			return
		}
		s.writeJsonResponse(w, response{
			Stocks: projector.ProjectStocks(sc.account.Retailer.Stocks, pipelineFromQuery(r)),
		}, http.StatusOK)
	}
}

func (s Server) stockAdd() http.HandlerFunc {
	type response struct {
		Success bool `json:"success"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		sc, err := getSessionContext(r.Context())
		if err != nil {
			s.Logger.Errorf("stockAdd: Error getting sessionContext, err: %v", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		e := model.StockEntry{}
		if err = json.NewDecoder(r.Body).Decode(&e); err != nil {
			s.Logger.Debugf("stockAdd: Error decoding JSON, err: %v", err)
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		if e.ID == "" {
			http.Error(w, "id: product id is required", http.StatusBadRequest)
			return
		}
		if e.NumberOfItems < 0 {
			http.Error(w, "numberOfItems: number of items must not be negative", http.StatusBadRequest)
			return
		}

		if err = s.DB.RetailerStockAdd(r.Context(), sc.session.SubjectID, e); err != nil {
			s.Logger.Errorf("stockAdd: Error adding stock entry for Retailer %s, err: %v", sc.session.SubjectID, err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		s.publishStockChange(r, sc.session.SubjectID)
		s.writeJsonResponse(w, response{Success: true}, http.StatusCreated)
	}
}

func (s Server) stockRemove() http.HandlerFunc {
	type response struct {
		Success bool `json:"success"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		sc, err := getSessionContext(r.Context())
		if err != nil {
			s.Logger.Errorf("stockRemove: Error getting sessionContext, err: %v", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		e := model.StockEntry{}
		if err = json.NewDecoder(r.Body).Decode(&e); err != nil {
			s.Logger.Debugf("stockRemove: Error decoding JSON, err: %v", err)
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}

		if err = s.DB.RetailerStockRemove(r.Context(), sc.session.SubjectID, e); err != nil {
			s.Logger.Errorf("stockRemove: Error removing stock entry for Retailer %s, err: %v", sc.session.SubjectID, err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		s.publishStockChange(r, sc.session.SubjectID)
		s.writeJsonResponse(w, response{Success: true}, http.StatusOK)
	}
}

func (s Server) stockUpdate() http.HandlerFunc {
	type request struct {
		ID            string `json:"id"`
		NumberOfItems int    `json:"numberOfItems"`
	}
	type response struct {
		Success bool `json:"success"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		sc, err := getSessionContext(r.Context())
		if err != nil {
			s.Logger.Errorf("stockUpdate: Error getting sessionContext, err: %v", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		req := request{}
		if err = json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.Logger.Debugf("stockUpdate: Error decoding JSON, err: %v", err)
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		if req.ID == "" {
			http.Error(w, "id: product id is required", http.StatusBadRequest)
			return
		}
		if req.NumberOfItems < 0 {
			http.Error(w, "numberOfItems: number of items must not be negative", http.StatusBadRequest)
			return
		}

		stocks := model.SetStockQuantity(sc.account.Retailer.Stocks, req.ID, req.NumberOfItems)
		if err = s.DB.RetailerStocksSet(r.Context(), sc.session.SubjectID, stocks); err != nil {
			s.Logger.Errorf("stockUpdate: Error setting stocks for Retailer %s, err: %v", sc.session.SubjectID, err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		s.publishStockChange(r, sc.session.SubjectID)
		s.writeJsonResponse(w, response{Success: true}, http.StatusOK)
	}
}

func (s Server) stockWatch() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sc, err := getSessionContext(r.Context())
		if err != nil {
			s.Logger.Errorf("stockWatch: Error getting sessionContext, err: %v", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		p := pipelineFromQuery(r)
		retailerID := sc.session.SubjectID
		sub := feed.Subscribe(r.Context(), s.RDB, database.CollectionRetailers, s.Logger)
		live := projector.NewLive(
			r.Context(),
			sub.C,
			sub.Close,
			s.retailerStocksSnapshot(retailerID),
			func(stocks []model.StockEntry) []model.StockEntry { return projector.ProjectStocks(stocks, p) },
			func(e feed.Event) bool { return e.Key == retailerID },
			s.Logger,
		)
		defer func() {
			if err := live.Close(); err != nil {
				s.Logger.Errorf("stockWatch: Error closing live projection, err: %v", err)
			}
		}()
		serveEventStream(s, w, r, live.C)
	}
}

func (s Server) retailerStocksSnapshot(retailerID string) projector.Snapshot[model.StockEntry] {
	return func(ctx context.Context) ([]model.StockEntry, error) {
		rt, err := s.DB.RetailerFindByID(ctx, retailerID)
		if err != nil {
			return nil, err
		}
		return rt.Stocks, nil
	}
}

func (s Server) publishStockChange(r *http.Request, retailerID string) {
	if err := s.Feed.Publish(r.Context(), database.CollectionRetailers, retailerID); err != nil {
		s.Logger.Errorf("publishStockChange: Error publishing stock change for Retailer %s, err: %v", retailerID, err)
	}
}
