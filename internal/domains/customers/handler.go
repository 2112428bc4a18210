package customers

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"github.com/sangkips/clientes-service/internal/db"
	"github.com/sangkips/clientes-service/internal/domains/customers/models"
	"github.com/sangkips/clientes-service/internal/handlers"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report JSON field names in validation messages.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

type Handler struct {
	svc *Service
}

func NewHandler(guard ConnectionGuard, events EventPublisher) *Handler {
	return &Handler{svc: NewService(guard, NewRepository, events)}
}

func (h *Handler) RegisterCustomerRoutes(r chi.Router) {
	r.Post("/register", h.register)
	r.Post("/login", h.login)
	r.Get("/clientes", h.listCustomers)
}

// CustomerResponse is the API response format for customers
type CustomerResponse struct {
	ID        int32  `json:"id"`
	Name      string `json:"name"`
	TaxID     string `json:"taxId"`
	Address   string `json:"address"`
	Email     string `json:"email"`
	CreatedAt string `json:"createdAt"`
}

type LoginResponse struct {
	Success  bool          `json:"success"`
	Message  string        `json:"message"`
	Customer LoginCustomer `json:"customer"`
}

type LoginCustomer struct {
	ID   int32  `json:"id"`
	Name string `json:"name"`
}

func toCustomerResponse(row models.ListClientesRow) CustomerResponse {
	resp := CustomerResponse{
		ID:      row.ID,
		Name:    row.Nome,
		TaxID:   row.Cpf,
		Address: row.Endereco,
		Email:   row.Email,
	}
	if row.CreatedAt.Valid {
		resp.CreatedAt = row.CreatedAt.Time.Format(time.RFC3339)
	}
	return resp
}

// Pointer fields separate a missing field from an empty one. Only absent or
// null fields fail validation; "" reaches the store.
type registerPayload struct {
	Name     *string `json:"name" validate:"required"`
	TaxID    *string `json:"taxId" validate:"required"`
	Address  *string `json:"address" validate:"required"`
	Email    *string `json:"email" validate:"required"`
	Password *string `json:"password" validate:"required"`
}

type loginPayload struct {
	Email    *string `json:"email" validate:"required"`
	Password *string `json:"password" validate:"required"`
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var payload registerPayload
	if !decodeAndValidate(w, r, &payload) {
		return
	}

	req := RegisterRequest{
		Name:     *payload.Name,
		TaxID:    *payload.TaxID,
		Address:  *payload.Address,
		Email:    *payload.Email,
		Password: *payload.Password,
	}
	if _, err := h.svc.Register(r.Context(), req); err != nil {
		writeServiceError(w, r, err, "register customer")
		return
	}

	handlers.RespondWithJSON(w, http.StatusOK, handlers.APIResponse{
		Success: true,
		Message: "registered",
	})
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var payload loginPayload
	if !decodeAndValidate(w, r, &payload) {
		return
	}

	result, err := h.svc.Login(r.Context(), LoginRequest{Email: *payload.Email, Password: *payload.Password})
	if err != nil {
		writeServiceError(w, r, err, "verify credentials")
		return
	}

	handlers.RespondWithJSON(w, http.StatusOK, LoginResponse{
		Success:  true,
		Message:  "login ok",
		Customer: LoginCustomer{ID: result.ID, Name: result.Name},
	})
}

func (h *Handler) listCustomers(w http.ResponseWriter, r *http.Request) {
	rows, err := h.svc.List(r.Context())
	if err != nil {
		writeServiceError(w, r, err, "list customers")
		return
	}

	response := make([]CustomerResponse, len(rows))
	for i, row := range rows {
		response[i] = toCustomerResponse(row)
	}

	handlers.RespondWithJSON(w, http.StatusOK, response)
}

func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		handlers.RespondWithError(w, http.StatusBadRequest, "INVALID_REQUEST", "invalid request body")
		return false
	}

	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			handlers.RespondWithError(w, http.StatusBadRequest, "VALIDATION_FAILED", "invalid request body")
			return false
		}
		fields := make([]string, len(verrs))
		for i, fe := range verrs {
			fields[i] = fe.Field()
		}
		handlers.RespondWithError(w, http.StatusBadRequest, "VALIDATION_FAILED", "missing required fields: "+strings.Join(fields, ", "))
		return false
	}

	return true
}

// writeServiceError maps service errors to responses. Store failures are
// logged with their detail and reported to the caller without it.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, action string) {
	switch {
	case errors.Is(err, db.ErrUnavailable):
		handlers.RespondWithError(w, http.StatusServiceUnavailable, "DATABASE_UNAVAILABLE", "database unavailable")
	case errors.Is(err, ErrDuplicateEmail):
		handlers.RespondWithError(w, http.StatusConflict, "EMAIL_TAKEN", "email already registered")
	case errors.Is(err, ErrDuplicateTaxID):
		handlers.RespondWithError(w, http.StatusConflict, "TAX_ID_TAKEN", "taxId already registered")
	case errors.Is(err, ErrInvalidCredentials):
		handlers.RespondWithError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "invalid email or password")
	default:
		log.Error().Err(err).Str("request_id", middleware.GetReqID(r.Context())).Msg("failed to " + action)
		handlers.RespondWithError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to "+action)
	}
}
