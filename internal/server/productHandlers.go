package server

import (
	"context"
	"encoding/json"
	"math/rand"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"consumerwise/internal/database"
	"consumerwise/internal/feed"
	"consumerwise/internal/model"
	"consumerwise/internal/projector"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/mongo"
)

var quantityPattern = regexp.MustCompile(`^\d+\s*(ml|gm)?$`)

type productRequest struct {
	ProductName   string             `json:"productName"`
	Description   string             `json:"description"`
	Category      string             `json:"category"`
	Quantity      string             `json:"quantity"`
	Packaging     string             `json:"packaging"`
	Image1        string             `json:"image1"`
	Image2        string             `json:"image2"`
	Image3        string             `json:"image3"`
	NutrientScore string             `json:"nutrientScore"`
	Calories      string             `json:"calories"`
	HealthyScore  string             `json:"healthyScore"`
	Ingredients   []model.Ingredient `json:"ingredients"`
}

// validate checks the metadata fields shared by add and edit. Failures name
// the offending field so the client can surface them inline.
func (req productRequest) validate() error {
	if req.ProductName == "" {
		return errors.New("productName: product name is required")
	}
	if req.Description == "" {
		return errors.New("description: description is required")
	}
	if req.Category == "" {
		return errors.New("category: category is required")
	}
	if !quantityPattern.MatchString(req.Quantity) {
		return errors.New("quantity: quantity must be a number optionally followed by ml or gm")
	}
	if req.Packaging != model.PackagingPlastic && req.Packaging != model.PackagingPaper {
		return errors.New("packaging: packaging must be plastic or paper")
	}
	if len(req.Ingredients) == 0 {
		return errors.New("ingredients: at least one ingredient is required")
	}
	for _, in := range req.Ingredients {
		if in.Title == "" {
			return errors.New("ingredients: ingredient title is required")
		}
	}
	return nil
}

// applyTo copies the request fields onto an item, filling in random scores
// when the admin left them out.
func (req productRequest) applyTo(i model.Item) model.Item {
	i.ProductName = req.ProductName
	i.Description = req.Description
	i.Category = req.Category
	i.Quantity = req.Quantity
	i.Packaging = req.Packaging
	i.Image1 = req.Image1
	i.Image2 = req.Image2
	i.Image3 = req.Image3
	i.NutrientScore = orRandomScore(req.NutrientScore)
	i.Calories = orRandomScore(req.Calories)
	i.HealthyScore = orRandomScore(req.HealthyScore)
	i.Ingredients = req.Ingredients
	return i
}

func orRandomScore(s string) string {
	if s != "" {
		return s
	}
	return strconv.Itoa(rand.Intn(101))
}

func (s Server) productAdd() http.HandlerFunc {
	type response struct {
		ID string `json:"id"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		sc, err := getSessionContext(r.Context())
		if err != nil {
			s.Logger.Errorf("productAdd: Error getting sessionContext, err: %v", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		companyName := mux.Vars(r)["companyName"]
		if !adminOwnsCompany(sc.account.Admin, companyName) {
			s.Logger.Debugf("productAdd: Admin %s does not own company %s", sc.session.SubjectID, companyName)
			http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
			return
		}

		req := productRequest{}
		if err = json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.Logger.Debugf("productAdd: Error decoding JSON, err: %v", err)
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		if err = req.validate(); err != nil {
			s.Logger.Debugf("productAdd: Invalid product, err: %v", err)
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		i := req.applyTo(model.Item{
			ID:          model.NewItemID(companyName, time.Now()),
			CompanyName: companyName,
		})
		if err = s.DB.ItemInsert(r.Context(), i); err != nil {
			s.Logger.Errorf("productAdd: Error inserting Item, err: %v", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		// The side effects below are not atomic with the insert. A failure
		// leaves the product published without its notification or change
		// event, which is logged rather than rolled back.
		if _, err = s.DB.MessageInsert(r.Context(), model.NewProductMessage(i, time.Now())); err != nil {
			s.Logger.Errorf("productAdd: Error inserting Message for Item ID: %s, err: %v", i.ID, err)
		} else if err = s.Feed.Publish(r.Context(), database.CollectionMessages, ""); err != nil {
			s.Logger.Errorf("productAdd: Error publishing Message change for Item ID: %s, err: %v", i.ID, err)
		}
		if err = s.Feed.Publish(r.Context(), database.CollectionItems, i.ID); err != nil {
			s.Logger.Errorf("productAdd: Error publishing Item change for Item ID: %s, err: %v", i.ID, err)
		}
		// Push delivery outlives the request, so it gets its own context.
		go s.notify(context.Background(), i, true)

		s.writeJsonResponse(w, response{ID: i.ID}, http.StatusCreated)
	}
}

func (s Server) productEdit() http.HandlerFunc {
	type response struct {
		Success bool `json:"success"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		sc, err := getSessionContext(r.Context())
		if err != nil {
			s.Logger.Errorf("productEdit: Error getting sessionContext, err: %v", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		itemID := mux.Vars(r)["itemID"]
		i, err := s.DB.ItemFindOne(r.Context(), itemID)
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				s.Logger.Debugf("productEdit: Item not found, ID: %s", itemID)
				http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
				return
			}
			s.Logger.Errorf("productEdit: Error finding Item with ID: %s, err: %v", itemID, err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		if !adminOwnsCompany(sc.account.Admin, i.CompanyName) {
			s.Logger.Debugf("productEdit: Admin %s does not own company %s", sc.session.SubjectID, i.CompanyName)
			http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
			return
		}

		req := productRequest{}
		if err = json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.Logger.Debugf("productEdit: Error decoding JSON, err: %v", err)
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		if err = req.validate(); err != nil {
			s.Logger.Debugf("productEdit: Invalid product, err: %v", err)
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		i = req.applyTo(i)
		if err = s.DB.ItemUpdate(r.Context(), i); err != nil {
			s.Logger.Errorf("productEdit: Error updating Item with ID: %s, err: %v", itemID, err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		if _, err = s.DB.MessageInsert(r.Context(), model.UpdatedProductMessage(i, time.Now())); err != nil {
			s.Logger.Errorf("productEdit: Error inserting Message for Item ID: %s, err: %v", i.ID, err)
		} else if err = s.Feed.Publish(r.Context(), database.CollectionMessages, ""); err != nil {
			s.Logger.Errorf("productEdit: Error publishing Message change for Item ID: %s, err: %v", i.ID, err)
		}
		if err = s.Feed.Publish(r.Context(), database.CollectionItems, i.ID); err != nil {
			s.Logger.Errorf("productEdit: Error publishing Item change for Item ID: %s, err: %v", i.ID, err)
		}
		go s.notify(context.Background(), i, false)

		s.writeJsonResponse(w, response{Success: true}, http.StatusOK)
	}
}

func (s Server) productRemove() http.HandlerFunc {
	type response struct {
		Success bool `json:"success"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		sc, err := getSessionContext(r.Context())
		if err != nil {
			s.Logger.Errorf("productRemove: Error getting sessionContext, err: %v", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		itemID := mux.Vars(r)["itemID"]
		i, err := s.DB.ItemFindOne(r.Context(), itemID)
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				s.Logger.Debugf("productRemove: Item not found, ID: %s", itemID)
				http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
				return
			}
			s.Logger.Errorf("productRemove: Error finding Item with ID: %s, err: %v", itemID, err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		if !adminOwnsCompany(sc.account.Admin, i.CompanyName) {
			s.Logger.Debugf("productRemove: Admin %s does not own company %s", sc.session.SubjectID, i.CompanyName)
			http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
			return
		}

		if err = s.DB.ItemDelete(r.Context(), itemID); err != nil {
			s.Logger.Errorf("productRemove: Error deleting Item with ID: %s, err: %v", itemID, err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		if err = s.Feed.Publish(r.Context(), database.CollectionItems, itemID); err != nil {
			s.Logger.Errorf("productRemove: Error publishing Item change for Item ID: %s, err: %v", itemID, err)
		}
		s.writeJsonResponse(w, response{Success: true}, http.StatusOK)
	}
}

func (s Server) companyGet() http.HandlerFunc {
	type response struct {
		Companies []model.Company `json:"companies"`
		Items     []model.Item    `json:"items"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		sc, err := getSessionContext(r.Context())
		if err != nil {
			s.Logger.Errorf("companyGet: Error getting sessionContext, err: %v", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		var items []model.Item
		if len(sc.account.Admin.Companies) > 0 {
			items, err = s.DB.ItemsFindByCompany(r.Context(), sc.account.Admin.Companies[0].Name)
			if err != nil {
				s.Logger.Errorf("companyGet: Error finding Items for Admin %s, err: %v", sc.session.SubjectID, err)
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}
		}
		s.writeJsonResponse(w, response{
			Companies: sc.account.Admin.Companies,
			Items:     items,
		}, http.StatusOK)
	}
}

func (s Server) itemList() http.HandlerFunc {
	type response struct {
		Items []model.Item `json:"items"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := s.DB.ItemsFindAll(r.Context())
		if err != nil {
			s.Logger.Errorf("itemList: Error finding Items, err: %v", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		s.writeJsonResponse(w, response{
			Items: projector.ProjectItems(items, pipelineFromQuery(r)),
		}, http.StatusOK)
	}
}

func (s Server) itemGetOne() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		itemID := mux.Vars(r)["itemID"]
		i, err := s.DB.ItemFindOne(r.Context(), itemID)
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				s.Logger.Debugf("itemGetOne: Item not found, ID: %s", itemID)
				http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
				return
			}
			s.Logger.Errorf("itemGetOne: Error finding Item with ID: %s, err: %v", itemID, err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		s.writeJsonResponse(w, i, http.StatusOK)
	}
}

func (s Server) itemWatch() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := pipelineFromQuery(r)
		sub := feed.Subscribe(r.Context(), s.RDB, database.CollectionItems, s.Logger)
		live := projector.NewLive(
			r.Context(),
			sub.C,
			sub.Close,
			s.DB.ItemsFindAll,
			func(items []model.Item) []model.Item { return projector.ProjectItems(items, p) },
			nil,
			s.Logger,
		)
		defer func() {
			if err := live.Close(); err != nil {
				s.Logger.Errorf("itemWatch: Error closing live projection, err: %v", err)
			}
		}()
		serveEventStream(s, w, r, live.C)
	}
}

func pipelineFromQuery(r *http.Request) projector.Pipeline {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	return projector.Pipeline{
		Search:   q.Get("search"),
		Category: q.Get("category"),
		Company:  q.Get("company"),
		Sort:     projector.SortMode(q.Get("sort")),
		Limit:    limit,
	}
}

func adminOwnsCompany(a *model.Admin, companyName string) bool {
	if a == nil {
		return false
	}
	for _, c := range a.Companies {
		if c.Name == companyName {
			return true
		}
	}
	return false
}
