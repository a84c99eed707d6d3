package server

import (
	"net/http"

	"github.com/gorilla/mux"
)

func (s Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.loggingMw)

	api := r.PathPrefix("/api").Subrouter()

	api.Handle("/login", s.maxBytesMw(s.login())).Methods(http.MethodPost)
	api.Handle("/admin/register", s.maxBytesMw(s.adminRegister())).Methods(http.MethodPost)
	api.Handle("/retailer/register", s.maxBytesMw(s.retailerRegister())).Methods(http.MethodPost)
	api.Handle("/logout", s.authMw(s.maxBytesMw(s.logout()))).Methods(http.MethodPost)
	api.Handle("/session", s.authMw(s.sessionInfo())).Methods(http.MethodGet)
	api.Handle("/upload", s.authMw(s.uploadMaxBytesMw(s.upload()))).Methods(http.MethodPost)

	adminAPI := api.PathPrefix("/admin").Subrouter()
	adminAPI.Use(s.authMw, s.adminOnly, s.maxBytesMw)
	adminAPI.HandleFunc("/product/add/{companyName}", s.productAdd()).Methods(http.MethodPost)
	adminAPI.HandleFunc("/product/edit/{itemID}", s.productEdit()).Methods(http.MethodPost)
	adminAPI.HandleFunc("/product/remove/{itemID}", s.productRemove()).Methods(http.MethodPost)
	adminAPI.HandleFunc("/company", s.companyGet()).Methods(http.MethodGet)
	adminAPI.HandleFunc("/settings", s.adminSettings()).Methods(http.MethodPost)
	adminAPI.PathPrefix("").Handler(s.notFoundHandler())

	retailerAPI := api.PathPrefix("/retailer").Subrouter()
	retailerAPI.Use(s.authMw, s.retailerOnly, s.maxBytesMw)
	retailerAPI.HandleFunc("/item/list", s.itemList()).Methods(http.MethodGet)
	retailerAPI.HandleFunc("/item/watch", s.itemWatch()).Methods(http.MethodGet)
	retailerAPI.HandleFunc("/item/get/{itemID}", s.itemGetOne()).Methods(http.MethodGet)
	retailerAPI.HandleFunc("/stock/add", s.stockAdd()).Methods(http.MethodPost)
	retailerAPI.HandleFunc("/stock/remove", s.stockRemove()).Methods(http.MethodPost)
	retailerAPI.HandleFunc("/stock/update", s.stockUpdate()).Methods(http.MethodPost)
	retailerAPI.HandleFunc("/stock/watch", s.stockWatch()).Methods(http.MethodGet)
	retailerAPI.HandleFunc("/stock/{retailerID}", s.stockGet()).Methods(http.MethodGet)
	retailerAPI.HandleFunc("/notification/list", s.notificationList()).Methods(http.MethodGet)
	retailerAPI.HandleFunc("/notification/watch", s.notificationWatch()).Methods(http.MethodGet)
	retailerAPI.HandleFunc("/settings", s.retailerSettings()).Methods(http.MethodPost)
	retailerAPI.PathPrefix("").Handler(s.notFoundHandler())

	return r
}
