package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salonbook/salon-api/internal/api/handler"
	"github.com/salonbook/salon-api/internal/api/middleware"
	"github.com/salonbook/salon-api/internal/core/domain"
	"github.com/salonbook/salon-api/internal/core/ports"
)

type stubAuth struct {
	registerErr error
	loginErr    error
}

func (s *stubAuth) Register(_ context.Context, name, email, _ string) (string, *domain.User, error) {
	if s.registerErr != nil {
		return "", nil, s.registerErr
	}
	return "token-new", &domain.User{ID: "u-new", Name: name, Email: email, Role: domain.RoleUser}, nil
}

func (s *stubAuth) Login(_ context.Context, _, _ string) (string, *domain.User, error) {
	if s.loginErr != nil {
		return "", nil, s.loginErr
	}
	return "token-user", &domain.User{ID: "u1", Role: domain.RoleUser}, nil
}

type stubTokens map[string]domain.Identity

func (s stubTokens) VerifyToken(token string) (domain.Identity, error) {
	id, ok := s[token]
	if !ok {
		return domain.Identity{}, domain.ErrUnauthorized
	}
	return id, nil
}

type stubReservations struct {
	created      ports.CreateReservationInput
	createErr    error
	availability domain.Availability
	mine         []*domain.Reservation
	all          []*domain.ReservationWithOwner
	cancelErr    error
	statusActor  string
}

func (s *stubReservations) CheckAvailability(context.Context, string, string) (domain.Availability, error) {
	return s.availability, nil
}

func (s *stubReservations) Create(_ context.Context, in ports.CreateReservationInput) (*domain.Reservation, error) {
	s.created = in
	if s.createErr != nil {
		return nil, s.createErr
	}
	proof := in.PaymentProof
	if proof == "" {
		proof = domain.NoPaymentProof
	}
	return &domain.Reservation{
		ID:            "r1",
		UserID:        in.UserID,
		ServiceName:   in.ServiceName,
		Date:          time.Date(2025, 7, 15, 0, 0, 0, 0, time.UTC),
		Time:          in.Time,
		Price:         in.Price,
		HasColor:      in.HasColor,
		PaymentMethod: domain.PaymentUnspecified,
		PaymentProof:  proof,
		Status:        domain.StatusPending,
	}, nil
}

func (s *stubReservations) ListForUser(context.Context, string) ([]*domain.Reservation, error) {
	return s.mine, nil
}

func (s *stubReservations) ListAll(context.Context) ([]*domain.ReservationWithOwner, error) {
	return s.all, nil
}

func (s *stubReservations) Cancel(_ context.Context, id, requester string) (*domain.Reservation, error) {
	if s.cancelErr != nil {
		return nil, s.cancelErr
	}
	return &domain.Reservation{ID: id, UserID: requester, Status: domain.StatusCancelled}, nil
}

func (s *stubReservations) UpdateStatus(_ context.Context, id, status, actor string) (*domain.Reservation, error) {
	st := domain.ReservationStatus(status)
	if !st.IsValid() {
		return nil, domain.ErrInvalidStatus
	}
	s.statusActor = actor
	return &domain.Reservation{ID: id, Status: st}, nil
}

type stubProofs struct {
	name string
	body string
}

func (s *stubProofs) Save(_ context.Context, originalName, _ string, body io.Reader) (string, error) {
	b, _ := io.ReadAll(body)
	s.name = originalName
	s.body = string(b)
	return "stored-" + originalName, nil
}

type fixture struct {
	e            *echo.Echo
	auth         *stubAuth
	reservations *stubReservations
	proofs       *stubProofs
}

func newFixture(t *testing.T, enforceAdmin bool) *fixture {
	t.Helper()
	f := &fixture{auth: &stubAuth{}, reservations: &stubReservations{}, proofs: &stubProofs{}}
	reg := prometheus.NewRegistry()
	f.e = NewRouter(Deps{
		Auth: f.auth,
		Tokens: stubTokens{
			"token-user":  {ID: "u1", Role: domain.RoleUser},
			"token-admin": {ID: "a1", Role: domain.RoleAdmin},
		},
		Reservations: f.reservations,
		Proofs:       f.proofs,
		HealthChecks: map[string]handler.HealthCheck{
			"mongodb": func(context.Context) error { return nil },
		},
	}, Options{
		AllowedOrigins:   []string{"*"},
		BodyLimit:        "1M",
		EnforceAdminRole: enforceAdmin,
		Registerer:       reg,
		Gatherer:         reg,
	}, zerolog.Nop())
	return f
}

func (f *fixture) do(method, path, token, contentType string, body io.Reader) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set(echo.HeaderContentType, contentType)
	}
	if token != "" {
		req.Header.Set(middleware.TokenHeader, token)
	}
	rec := httptest.NewRecorder()
	f.e.ServeHTTP(rec, req)
	return rec
}

func (f *fixture) json(method, path, token, body string) *httptest.ResponseRecorder {
	return f.do(method, path, token, echo.MIMEApplicationJSON, strings.NewReader(body))
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestWelcome(t *testing.T) {
	f := newFixture(t, false)
	rec := f.do(http.MethodGet, "/", "", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, welcomeMessage, rec.Body.String())
}

func TestRegisterAndLogin(t *testing.T) {
	f := newFixture(t, false)

	rec := f.json(http.MethodPost, "/api/users/register", "", `{"name":"Ama","email":"ama@example.com","password":"secret1"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "token-new", body["token"])
	assert.NotEmpty(t, body["message"])

	rec = f.json(http.MethodPost, "/api/users/register", "", `{"name":"Ama","email":"not-an-email","password":"secret1"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode(t, rec)["error"], "email must be a valid email")

	f.auth.registerErr = domain.ErrEmailTaken
	rec = f.json(http.MethodPost, "/api/users/register", "", `{"name":"Ama","email":"ama@example.com","password":"secret1"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = f.json(http.MethodPost, "/api/users/login", "", `{"email":"ama@example.com","password":"secret1"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "token-user", decode(t, rec)["token"])

	f.auth.loginErr = domain.ErrInvalidCredentials
	rec = f.json(http.MethodPost, "/api/users/login", "", `{"email":"ama@example.com","password":"wrong"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.json(http.MethodPost, "/api/users/login", "", `{`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuthTest(t *testing.T) {
	f := newFixture(t, false)

	rec := f.do(http.MethodGet, "/api/users/auth-test", "", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(http.MethodGet, "/api/users/auth-test", "forged", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(http.MethodGet, "/api/users/auth-test", "token-user", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	user := decode(t, rec)["user"].(map[string]any)
	assert.Equal(t, "u1", user["id"])
	assert.Equal(t, "user", user["role"])
}

func TestCreateReservationJSON(t *testing.T) {
	f := newFixture(t, false)

	rec := f.json(http.MethodPost, "/api/reservations", "token-user",
		`{"serviceName":"Tresses","date":"2025-07-15","time":"14:00","price":15000,"hasColor":"true"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	assert.Equal(t, "u1", f.reservations.created.UserID)
	assert.True(t, f.reservations.created.HasColor)
	assert.Empty(t, f.reservations.created.PaymentProof)

	booking := decode(t, rec)["booking"].(map[string]any)
	assert.Equal(t, "r1", booking["_id"])
	assert.Equal(t, "u1", booking["userId"])
	assert.Equal(t, "pending", booking["status"])
	assert.Equal(t, "N/A", booking["paymentProof"])
	assert.Equal(t, "2025-07-15T00:00:00Z", booking["date"])
}

func TestCreateReservationJSONStringPrice(t *testing.T) {
	f := newFixture(t, false)

	rec := f.json(http.MethodPost, "/api/reservations", "token-user",
		`{"serviceName":"Tresses","date":"2025-07-15","time":"14:00","price":"15000"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, 15000.0, f.reservations.created.Price)

	rec = f.json(http.MethodPost, "/api/reservations", "token-user",
		`{"serviceName":"Tresses","date":"2025-07-15","time":"14:00","price":"quinze"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode(t, rec)["error"], "invalid payload")
}

func TestCreateReservationMultipart(t *testing.T) {
	f := newFixture(t, false)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("serviceName", "Coupe"))
	require.NoError(t, w.WriteField("date", "2025-07-15"))
	require.NoError(t, w.WriteField("time", "09:00"))
	require.NoError(t, w.WriteField("price", "5000"))
	require.NoError(t, w.WriteField("hasColor", "true"))
	require.NoError(t, w.WriteField("paymentMethod", "mtn"))
	part, err := w.CreateFormFile("paymentProof", "receipt.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("png-bytes"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	rec := f.do(http.MethodPost, "/api/reservations", "token-user", w.FormDataContentType(), &buf)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	assert.Equal(t, "receipt.png", f.proofs.name)
	assert.Equal(t, "png-bytes", f.proofs.body)
	assert.Equal(t, "stored-receipt.png", f.reservations.created.PaymentProof)
	assert.Equal(t, 5000.0, f.reservations.created.Price)
	assert.Equal(t, "mtn", f.reservations.created.PaymentMethod)
	assert.True(t, f.reservations.created.HasColor)
}

func TestCreateReservationFailures(t *testing.T) {
	f := newFixture(t, false)

	rec := f.json(http.MethodPost, "/api/reservations", "", `{}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.json(http.MethodPost, "/api/reservations", "token-user",
		`{"serviceName":"Tresses","date":"2025-07-15","price":15000}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode(t, rec)["error"], "time is required")

	f.reservations.createErr = domain.ErrSlotFull
	rec = f.json(http.MethodPost, "/api/reservations", "token-user",
		`{"serviceName":"Tresses","date":"2025-07-15","time":"14:00","price":15000}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	f.reservations.createErr = errors.New("mongo down")
	rec = f.json(http.MethodPost, "/api/reservations", "token-user",
		`{"serviceName":"Tresses","date":"2025-07-15","time":"14:00","price":15000}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal server error", decode(t, rec)["error"])
}

func TestCheckAvailability(t *testing.T) {
	f := newFixture(t, false)

	rec := f.json(http.MethodPost, "/api/reservations/check-availability", "token-user", `{"date":"2025-07-15"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, false, decode(t, rec)["available"])

	f.reservations.availability = domain.Availability{Available: true, Booked: 1, Capacity: 3}
	rec = f.json(http.MethodPost, "/api/reservations/check-availability", "token-user", `{"date":"2025-07-15","time":"14:00"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, true, body["available"])
	assert.Equal(t, 2.0, body["remaining"])

	f.reservations.availability = domain.Availability{Available: false, Booked: 3, Capacity: 3}
	rec = f.json(http.MethodPost, "/api/reservations/check-availability", "token-user", `{"date":"2025-07-15","time":"14:00"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, decode(t, rec)["available"])
}

func TestListMine(t *testing.T) {
	f := newFixture(t, false)
	f.reservations.mine = []*domain.Reservation{{ID: "r2", UserID: "u1"}, {ID: "r1", UserID: "u1"}}

	rec := f.do(http.MethodGet, "/api/reservations/user", "token-user", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var list []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 2)
	assert.Equal(t, "r2", list[0]["_id"])

	f.reservations.mine = nil
	rec = f.do(http.MethodGet, "/api/reservations/user", "token-user", "", nil)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
}

func TestCancel(t *testing.T) {
	f := newFixture(t, false)

	rec := f.do(http.MethodDelete, "/api/reservations/r1", "token-user", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "cancelled", decode(t, rec)["reservation"].(map[string]any)["status"])

	f.reservations.cancelErr = domain.ErrUnauthorized
	rec = f.do(http.MethodDelete, "/api/reservations/r1", "token-user", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	f.reservations.cancelErr = domain.ErrReservationNotFound
	rec = f.do(http.MethodDelete, "/api/reservations/nope", "token-user", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminListPopulatesOwner(t *testing.T) {
	f := newFixture(t, false)
	f.reservations.all = []*domain.ReservationWithOwner{
		{Reservation: domain.Reservation{ID: "r1", UserID: "u1"}, Owner: &domain.Owner{ID: "u1", Name: "Ama", Email: "ama@example.com"}},
		{Reservation: domain.Reservation{ID: "r2", UserID: "gone"}},
	}

	rec := f.do(http.MethodGet, "/api/reservations/admin", "token-user", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var list []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 2)
	owner := list[0]["userId"].(map[string]any)
	assert.Equal(t, "Ama", owner["name"])
	assert.Equal(t, "ama@example.com", owner["email"])
	assert.NotContains(t, owner, "password")
	assert.Nil(t, list[1]["userId"])
}

func TestUpdateStatus(t *testing.T) {
	f := newFixture(t, false)

	rec := f.json(http.MethodPut, "/api/reservations/r1/status", "token-user", `{"status":"confirmed"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u1", f.reservations.statusActor)
	assert.Equal(t, "reservation status updated to 'confirmed'", decode(t, rec)["message"])

	rec = f.json(http.MethodPut, "/api/reservations/r1/status", "token-user", `{"status":"archived"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminRoleEnforced(t *testing.T) {
	f := newFixture(t, true)

	rec := f.do(http.MethodGet, "/api/reservations/admin", "token-user", "", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.json(http.MethodPut, "/api/reservations/r1/status", "token-user", `{"status":"confirmed"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(http.MethodGet, "/api/reservations/admin", "token-admin", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.json(http.MethodPut, "/api/reservations/r1/status", "token-admin", `{"status":"confirmed"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "a1", f.reservations.statusActor)

	rec = f.do(http.MethodGet, "/api/reservations/user", "token-user", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	f := newFixture(t, false)

	rec := f.do(http.MethodGet, "/health", "", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(http.MethodGet, "/health/ready", "", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(http.MethodGet, "/metrics", "", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "requests_total")
}
