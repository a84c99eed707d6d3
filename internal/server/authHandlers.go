package server

import (
	"context"
	"encoding/json"
	"net/http"

	"consumerwise/internal/auth"
	"consumerwise/internal/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

func (s Server) adminRegister() http.HandlerFunc {
	type request struct {
		Name        string `json:"name"`
		Email       string `json:"email"`
		Password    string `json:"password"`
		CompanyName string `json:"companyName"`
	}
	type response struct {
		Token   string        `json:"token"`
		Role    string        `json:"role"`
		Name    string        `json:"name"`
		Company model.Company `json:"company"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		req := request{}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.Logger.Debugf("adminRegister: Error decoding JSON, err: %v", err)
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		if err := auth.ValidateCredentialShape(req.Email, req.Password); err != nil {
			s.Logger.Debugf("adminRegister: Invalid credentials, err: %v", err)
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if req.Name == "" {
			http.Error(w, "name: name is required", http.StatusBadRequest)
			return
		}
		if req.CompanyName == "" {
			http.Error(w, "companyName: company name is required", http.StatusBadRequest)
			return
		}

		id, err := s.registerIdentity(r.Context(), req.Email, req.Password)
		if err != nil {
			if mongo.IsDuplicateKeyError(errors.Cause(err)) {
				s.Logger.Debugf("adminRegister: Error duplicate key when inserting Identity, err: %v", err)
				http.Error(w, http.StatusText(http.StatusUnprocessableEntity), http.StatusUnprocessableEntity)
				return
			}
			s.Logger.Errorf("adminRegister: Error inserting Identity, err: %v", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		company := model.Company{ID: uuid.NewString(), Name: req.CompanyName}
		a := model.Admin{
			ID:        id,
			Email:     req.Email,
			Name:      req.Name,
			Companies: []model.Company{company},
		}
		if err = s.DB.AdminInsert(r.Context(), a); err != nil {
			s.Logger.Errorf("adminRegister: Error inserting Admin, err: %v", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		token, err := s.issueSession(r.Context(), id, model.RoleAdmin)
		if err != nil {
			s.Logger.Errorf("adminRegister: Error issuing session for Admin, err: %v", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		s.writeJsonResponse(w, response{
			Token:   token,
			Role:    model.RoleAdmin,
			Name:    req.Name,
			Company: company,
		}, http.StatusCreated)
	}
}

func (s Server) retailerRegister() http.HandlerFunc {
	type request struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
		FCMToken string `json:"fcmToken"`
	}
	type response struct {
		Token string `json:"token"`
		Role  string `json:"role"`
		Name  string `json:"name"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		req := request{}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.Logger.Debugf("retailerRegister: Error decoding JSON, err: %v", err)
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		if err := auth.ValidateCredentialShape(req.Email, req.Password); err != nil {
			s.Logger.Debugf("retailerRegister: Invalid credentials, err: %v", err)
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if req.Name == "" {
			http.Error(w, "name: name is required", http.StatusBadRequest)
			return
		}

		id, err := s.registerIdentity(r.Context(), req.Email, req.Password)
		if err != nil {
			if mongo.IsDuplicateKeyError(errors.Cause(err)) {
				s.Logger.Debugf("retailerRegister: Error duplicate key when inserting Identity, err: %v", err)
				http.Error(w, http.StatusText(http.StatusUnprocessableEntity), http.StatusUnprocessableEntity)
				return
			}
			s.Logger.Errorf("retailerRegister: Error inserting Identity, err: %v", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		rt := model.Retailer{
			ID:    id,
			Email: req.Email,
			Name:  req.Name,
		}
		if err = s.DB.RetailerInsert(r.Context(), rt); err != nil {
			s.Logger.Errorf("retailerRegister: Error inserting Retailer, err: %v", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		if req.FCMToken != "" {
			if err = s.DB.RetailerAddDevice(r.Context(), id, model.Device{FCMToken: req.FCMToken}); err != nil {
				s.Logger.Errorf("retailerRegister: Error adding Device to Retailer, err: %v", err)
			}
		}

		token, err := s.issueSession(r.Context(), id, model.RoleRetailer)
		if err != nil {
			s.Logger.Errorf("retailerRegister: Error issuing session for Retailer, err: %v", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		s.writeJsonResponse(w, response{
			Token: token,
			Role:  model.RoleRetailer,
			Name:  req.Name,
		}, http.StatusCreated)
	}
}

func (s Server) login() http.HandlerFunc {
	type request struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		FCMToken string `json:"fcmToken"`
	}
	type response struct {
		Token   string         `json:"token"`
		Role    string         `json:"role"`
		Name    string         `json:"name"`
		Company *model.Company `json:"company,omitempty"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		req := request{}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.Logger.Debugf("login: Error decoding JSON, err: %v", err)
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}

		subject, err := s.Verifier.Verify(r.Context(), req.Email, req.Password)
		if err != nil {
			var ve auth.ValidationError
			if errors.As(err, &ve) {
				s.Logger.Debugf("login: Invalid credential shape, err: %v", err)
				http.Error(w, ve.Error(), http.StatusBadRequest)
				return
			}
			if errors.Is(err, auth.ErrInvalidCredentials) {
				s.Logger.Debugf("login: Invalid credentials for email: %s", req.Email)
			} else {
				s.Logger.Errorf("login: Error verifying credentials, err: %v", err)
			}
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}

		account, err := s.Resolver.Resolve(r.Context(), subject.ID)
		if err != nil {
			if errors.Is(err, auth.ErrNoProfile) {
				s.Logger.Errorf("login: Subject %s has no profile", subject.ID)
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
				return
			}
			s.Logger.Errorf("login: Error resolving profile for subject: %s, err: %v", subject.ID, err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		token, err := s.issueSession(r.Context(), subject.ID, account.Role)
		if err != nil {
			s.Logger.Errorf("login: Error issuing session for subject: %s, err: %v", subject.ID, err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		resp := response{Token: token, Role: account.Role}
		switch account.Role {
		case model.RoleAdmin:
			resp.Name = account.Admin.Name
			if len(account.Admin.Companies) > 0 {
				resp.Company = &account.Admin.Companies[0]
			}
		case model.RoleRetailer:
			resp.Name = account.Retailer.Name
			if req.FCMToken != "" {
				if err = s.DB.RetailerAddDevice(r.Context(), subject.ID, model.Device{FCMToken: req.FCMToken}); err != nil {
					s.Logger.Errorf("login: Error adding Device to Retailer, err: %v", err)
				}
			}
		}
		s.writeJsonResponse(w, resp, http.StatusOK)
	}
}

func (s Server) logout() http.HandlerFunc {
	type response struct {
		Success bool `json:"success"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		sc, err := getSessionContext(r.Context())
		if err != nil {
			s.Logger.Errorf("logout: Error getting sessionContext, err: %v", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		switch sc.session.Role {
		case model.RoleAdmin:
			err = s.DB.AdminRemoveLoginToken(r.Context(), sc.session.SubjectID, sc.session.TokenID)
		case model.RoleRetailer:
			err = s.DB.RetailerRemoveLoginToken(r.Context(), sc.session.SubjectID, sc.session.TokenID)
		}
		if err != nil {
			s.Logger.Errorf("logout: Error removing login token, err: %v", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		s.writeJsonResponse(w, response{Success: true}, http.StatusOK)
	}
}

func (s Server) sessionInfo() http.HandlerFunc {
	type response struct {
		SubjectID    string          `json:"subjectId"`
		Role         string          `json:"role"`
		Name         string          `json:"name"`
		Email        string          `json:"email"`
		ProfileImage *string         `json:"profileImage"`
		Companies    []model.Company `json:"companies,omitempty"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		sc, err := getSessionContext(r.Context())
		if err != nil {
			s.Logger.Errorf("sessionInfo: Error getting sessionContext, err: %v", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		resp := response{SubjectID: sc.session.SubjectID, Role: sc.session.Role}
		switch sc.session.Role {
		case model.RoleAdmin:
			resp.Name = sc.account.Admin.Name
			resp.Email = sc.account.Admin.Email
			resp.ProfileImage = sc.account.Admin.ProfileImage
			resp.Companies = sc.account.Admin.Companies
		case model.RoleRetailer:
			resp.Name = sc.account.Retailer.Name
			resp.Email = sc.account.Retailer.Email
			resp.ProfileImage = sc.account.Retailer.ProfileImage
		}
		s.writeJsonResponse(w, resp, http.StatusOK)
	}
}

func (s Server) adminSettings() http.HandlerFunc {
	return s.profileSettings(model.RoleAdmin)
}

func (s Server) retailerSettings() http.HandlerFunc {
	return s.profileSettings(model.RoleRetailer)
}

func (s Server) profileSettings(role string) http.HandlerFunc {
	type request struct {
		Name         string  `json:"name"`
		ProfileImage *string `json:"profileImage"`
	}
	type response struct {
		Success bool `json:"success"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		sc, err := getSessionContext(r.Context())
		if err != nil {
			s.Logger.Errorf("profileSettings: Error getting sessionContext, err: %v", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		req := request{}
		if err = json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.Logger.Debugf("profileSettings: Error decoding JSON, err: %v", err)
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		if req.Name == "" {
			http.Error(w, "name: name is required", http.StatusBadRequest)
			return
		}

		switch role {
		case model.RoleAdmin:
			err = s.DB.AdminProfileUpdate(r.Context(), sc.session.SubjectID, req.Name, req.ProfileImage)
		case model.RoleRetailer:
			err = s.DB.RetailerProfileUpdate(r.Context(), sc.session.SubjectID, req.Name, req.ProfileImage)
		}
		if err != nil {
			s.Logger.Errorf("profileSettings: Error updating profile for subject: %s, err: %v", sc.session.SubjectID, err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		s.writeJsonResponse(w, response{Success: true}, http.StatusOK)
	}
}

func (s Server) registerIdentity(ctx context.Context, email string, password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", errors.Wrap(err, "error generating bcrypt from password")
	}
	return s.DB.IdentityInsert(ctx, model.Identity{Email: email, Password: hash})
}

// issueSession mints a session token and stores its hash on the profile so
// logout can revoke it server-side.
func (s Server) issueSession(ctx context.Context, subjectID string, role string) (string, error) {
	token, tokenID, exp, err := s.Issuer.Issue(subjectID, role)
	if err != nil {
		return "", err
	}
	hash, err := auth.TokenHash(token)
	if err != nil {
		return "", err
	}
	lt := model.LoginToken{
		TokenID:    tokenID,
		Token:      hash,
		Expiration: primitive.NewDateTimeFromTime(exp),
	}
	switch role {
	case model.RoleAdmin:
		err = s.DB.AdminAddLoginToken(ctx, subjectID, lt)
	case model.RoleRetailer:
		err = s.DB.RetailerAddLoginToken(ctx, subjectID, lt)
	default:
		err = errors.Errorf("unknown role: %s", role)
	}
	if err != nil {
		return "", err
	}
	return token, nil
}
