package routers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"athleticamp/config"
	"athleticamp/database"
	"athleticamp/middleware"
	"athleticamp/models"
	"athleticamp/services/enrollment"
	"athleticamp/services/lifecycle"
	"athleticamp/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const testSecret = "test-secret"

type stubGateway struct {
	mu      sync.Mutex
	calls   int
	decline bool
}

func (g *stubGateway) CreatePaymentIntent(ctx context.Context, p utils.PaymentIntentParams) (*utils.PaymentIntent, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	if g.decline {
		return nil, fmt.Errorf("%w: insufficient funds", utils.ErrPaymentDeclined)
	}
	id := fmt.Sprintf("pi_%d", g.calls)
	return &utils.PaymentIntent{ID: id, Amount: p.AmountMinor, Currency: p.Currency, Status: utils.StatusSucceeded, Raw: []byte(`{"id":"` + id + `"}`)}, nil
}

type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type harness struct {
	app *fiber.App
	db  *gorm.DB
	gw  *stubGateway
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	d := database.OpenTestDb(t)
	gw := &stubGateway{}
	log := zap.NewNop()
	cfg := &config.Config{
		AccessTokenSecret: testSecret,
		TokenTTL:          time.Hour,
		CorsOrigins:       "*",
	}
	app := NewApp(Deps{
		Config:     cfg,
		DB:         d.Db,
		Log:        log,
		Enrollment: enrollment.NewService(d.Db, gw, nil, log, 3),
		Lifecycle:  lifecycle.NewService(d.Db, nil, log),
	})
	return &harness{app: app, db: d.Db, gw: gw}
}

func token(t *testing.T, email string) string {
	t.Helper()
	tok, err := middleware.GenerateJWT(testSecret, email, "", time.Hour)
	require.NoError(t, err)
	return tok
}

func (h *harness) do(t *testing.T, method, path, email string, body interface{}) (int, envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if email != "" {
		req.Header.Set("Authorization", "Bearer "+token(t, email))
	}
	resp, err := h.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	_ = json.Unmarshal(raw, &env)
	return resp.StatusCode, env
}

func (h *harness) seedUser(t *testing.T, email, role string) {
	t.Helper()
	require.NoError(t, h.db.Create(&models.User{Name: email, Email: email, Role: role}).Error)
}

func (h *harness) count(t *testing.T, model interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, h.db.Model(model).Count(&n).Error)
	return n
}

func TestLiveness(t *testing.T) {
	h := newHarness(t)
	resp, err := h.app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Athleti camp is ongoing this season", string(body))
}

func TestIssueToken(t *testing.T) {
	h := newHarness(t)
	status, env := h.do(t, http.MethodPost, "/jwt", "", map[string]string{"email": "sam@camp.io"})
	require.Equal(t, http.StatusOK, status)

	var data struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	claims, err := middleware.VerifyToken(testSecret, data.Token)
	require.NoError(t, err)
	assert.Equal(t, "sam@camp.io", claims.Email)
}

func TestProtectedRoutesRejectMissingToken(t *testing.T) {
	h := newHarness(t)
	class := models.Class{Name: "Judo", Price: 10, AvailableSeats: 3}
	require.NoError(t, h.db.Create(&class).Error)

	status, env := h.do(t, http.MethodPost, "/selectedClasses", "", map[string]string{"classId": class.ID})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Invalid authorization", env.Message)

	status, _ = h.do(t, http.MethodPost, "/dashboard/payment/anything", "", map[string]interface{}{"paymentMethodId": "pm_1", "price": 10})
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = h.do(t, http.MethodPost, "/classes", "", map[string]interface{}{"name": "Sneaky"})
	assert.Equal(t, http.StatusUnauthorized, status)

	assert.Zero(t, h.count(t, &models.SelectedClass{}))
	assert.EqualValues(t, 1, h.count(t, &models.Class{}))
	assert.Zero(t, h.gw.calls)
}

func TestCreateUserIsIdempotent(t *testing.T) {
	h := newHarness(t)
	body := map[string]string{"name": "Sam", "email": "sam@camp.io"}

	status, _ := h.do(t, http.MethodPost, "/users", "", body)
	assert.Equal(t, http.StatusCreated, status)

	status, env := h.do(t, http.MethodPost, "/users", "", body)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "User already exists", env.Message)
	assert.EqualValues(t, 1, h.count(t, &models.User{}))
}

func TestRoleCheckAnswersOnlyForCaller(t *testing.T) {
	h := newHarness(t)
	h.seedUser(t, "boss@camp.io", models.RoleAdmin)
	h.seedUser(t, "kim@camp.io", models.RoleInstructor)

	_, env := h.do(t, http.MethodGet, "/users/admin/boss@camp.io", "boss@camp.io", nil)
	assert.JSONEq(t, `{"admin":true}`, string(env.Data))

	_, env = h.do(t, http.MethodGet, "/users/admin/boss@camp.io", "kim@camp.io", nil)
	assert.JSONEq(t, `{"admin":false}`, string(env.Data))

	_, env = h.do(t, http.MethodGet, "/users/instructor/kim@camp.io", "kim@camp.io", nil)
	assert.JSONEq(t, `{"instructor":true}`, string(env.Data))
}

func TestAdminRoutesRejectOtherRoles(t *testing.T) {
	h := newHarness(t)
	h.seedUser(t, "kim@camp.io", models.RoleInstructor)
	h.seedUser(t, "sam@camp.io", "")

	status, env := h.do(t, http.MethodGet, "/manageClasses", "kim@camp.io", nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "Forbidden access", env.Message)

	status, _ = h.do(t, http.MethodPost, "/addClass", "sam@camp.io", map[string]interface{}{"name": "Boxing"})
	assert.Equal(t, http.StatusForbidden, status)

	var sam models.User
	require.NoError(t, h.db.Where("email = ?", "sam@camp.io").First(&sam).Error)
	status, _ = h.do(t, http.MethodPatch, "/users/admin/"+sam.ID, "kim@camp.io", map[string]string{"role": "admin"})
	assert.Equal(t, http.StatusForbidden, status)

	require.NoError(t, h.db.Where("email = ?", "sam@camp.io").First(&sam).Error)
	assert.Empty(t, sam.Role)
	assert.Zero(t, h.count(t, &models.DraftClass{}))
}

func TestAdminPromotesUser(t *testing.T) {
	h := newHarness(t)
	h.seedUser(t, "boss@camp.io", models.RoleAdmin)
	h.seedUser(t, "sam@camp.io", "")
	var sam models.User
	require.NoError(t, h.db.Where("email = ?", "sam@camp.io").First(&sam).Error)

	status, _ := h.do(t, http.MethodPatch, "/users/admin/"+sam.ID, "boss@camp.io", map[string]string{})
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, h.db.Where("id = ?", sam.ID).First(&sam).Error)
	assert.Equal(t, models.RoleAdmin, sam.Role)

	status, _ = h.do(t, http.MethodPatch, "/users/admin/missing", "boss@camp.io", map[string]string{"role": "instructor"})
	assert.Equal(t, http.StatusNotFound, status)
}

func (h *harness) selectClass(t *testing.T, email, classID string) string {
	t.Helper()
	status, env := h.do(t, http.MethodPost, "/selectedClasses", email, map[string]string{"classId": classID})
	require.Equal(t, http.StatusCreated, status, env.Message)
	var sel struct {
		ID string `json:"_id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &sel))
	return sel.ID
}

func TestEnrollmentRespectsSeatCount(t *testing.T) {
	h := newHarness(t)
	class := models.Class{Name: "Boxing Basics", Price: 25, AvailableSeats: 5}
	require.NoError(t, h.db.Create(&class).Error)

	selections := map[string]string{}
	for i := 0; i < 6; i++ {
		email := fmt.Sprintf("student%d@camp.io", i)
		selections[email] = h.selectClass(t, email, class.ID)
	}

	enrolled, rejected := 0, 0
	for i := 0; i < 6; i++ {
		email := fmt.Sprintf("student%d@camp.io", i)
		status, _ := h.do(t, http.MethodPost, "/dashboard/payment/"+selections[email], email,
			map[string]interface{}{"paymentMethodId": "pm_card_visa", "price": 25})
		switch status {
		case http.StatusCreated:
			enrolled++
		case http.StatusConflict:
			rejected++
		default:
			t.Fatalf("unexpected status %d", status)
		}
	}
	assert.Equal(t, 5, enrolled)
	assert.Equal(t, 1, rejected)
	assert.Equal(t, 5, h.gw.calls)

	var after models.Class
	require.NoError(t, h.db.Where("id = ?", class.ID).First(&after).Error)
	assert.Equal(t, 0, after.AvailableSeats)
	assert.Equal(t, 5, after.TotalStudents)
	assert.EqualValues(t, 5, h.count(t, &models.EnrolledClass{}))
	assert.EqualValues(t, 5, h.count(t, &models.Payment{}))
	assert.EqualValues(t, 1, h.count(t, &models.SelectedClass{}))

	status, env := h.do(t, http.MethodGet, "/enrolledClasses?email=student0@camp.io", "", nil)
	require.Equal(t, http.StatusOK, status)
	var list []models.EnrolledClass
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Len(t, list, 1)
	assert.Equal(t, class.ID, list[0].ClassID)

	status, env = h.do(t, http.MethodGet, "/payment?period=month", "", nil)
	require.Equal(t, http.StatusOK, status)
	var payments []models.Payment
	require.NoError(t, json.Unmarshal(env.Data, &payments))
	assert.Len(t, payments, 5)
}

func TestDeclinedPaymentLeavesStateUntouched(t *testing.T) {
	h := newHarness(t)
	h.gw.decline = true
	class := models.Class{Name: "Yoga", Price: 15, AvailableSeats: 4, TotalStudents: 2}
	require.NoError(t, h.db.Create(&class).Error)
	selID := h.selectClass(t, "sam@camp.io", class.ID)

	status, env := h.do(t, http.MethodPost, "/dashboard/payment/"+selID, "sam@camp.io",
		map[string]interface{}{"paymentMethodId": "pm_card_declined", "price": 15})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Payment failed", env.Message)

	var after models.Class
	require.NoError(t, h.db.Where("id = ?", class.ID).First(&after).Error)
	assert.Equal(t, 4, after.AvailableSeats)
	assert.Equal(t, 2, after.TotalStudents)
	assert.Zero(t, h.count(t, &models.Payment{}))
	assert.Zero(t, h.count(t, &models.EnrolledClass{}))
	assert.EqualValues(t, 1, h.count(t, &models.SelectedClass{}))
}

func TestPaymentRejectsOtherUsersSelection(t *testing.T) {
	h := newHarness(t)
	class := models.Class{Name: "Yoga", Price: 15, AvailableSeats: 4}
	require.NoError(t, h.db.Create(&class).Error)
	selID := h.selectClass(t, "sam@camp.io", class.ID)

	status, _ := h.do(t, http.MethodPost, "/dashboard/payment/"+selID, "eve@camp.io",
		map[string]interface{}{"paymentMethodId": "pm_card_visa", "price": 15})
	assert.Equal(t, http.StatusNotFound, status)
	assert.Zero(t, h.gw.calls)
}

func TestSelectionLifecycle(t *testing.T) {
	h := newHarness(t)
	class := models.Class{Name: "Fencing", Image: "f.png", InstructorName: "Lee", Price: 40, AvailableSeats: 8}
	require.NoError(t, h.db.Create(&class).Error)

	selID := h.selectClass(t, "sam@camp.io", class.ID)

	status, _ := h.do(t, http.MethodPost, "/selectedClasses", "sam@camp.io", map[string]string{"classId": class.ID})
	assert.Equal(t, http.StatusConflict, status)

	status, env := h.do(t, http.MethodGet, "/selectedClasses", "sam@camp.io", nil)
	require.Equal(t, http.StatusOK, status)
	var mine []models.SelectedClass
	require.NoError(t, json.Unmarshal(env.Data, &mine))
	require.Len(t, mine, 1)
	assert.Equal(t, "Fencing", mine[0].ClassName)

	_, env = h.do(t, http.MethodGet, "/selectedClasses", "eve@camp.io", nil)
	assert.JSONEq(t, `[]`, string(env.Data))

	status, _ = h.do(t, http.MethodDelete, "/selectedClass/"+selID, "eve@camp.io", nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = h.do(t, http.MethodDelete, "/selectedClass/"+selID, "sam@camp.io", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Zero(t, h.count(t, &models.SelectedClass{}))
}

func TestDraftApprovalPublishesCopy(t *testing.T) {
	h := newHarness(t)
	h.seedUser(t, "boss@camp.io", models.RoleAdmin)
	h.seedUser(t, "kim@camp.io", models.RoleInstructor)

	status, env := h.do(t, http.MethodPost, "/addClass", "kim@camp.io",
		map[string]interface{}{"name": "Karate", "image": "k.png", "price": 30, "availableSeats": 12})
	require.Equal(t, http.StatusCreated, status, env.Message)
	var draft models.DraftClass
	require.NoError(t, json.Unmarshal(env.Data, &draft))
	assert.Equal(t, models.DraftStatusPending, draft.Status)

	_, env = h.do(t, http.MethodGet, "/myClasses", "kim@camp.io", nil)
	var mine []models.DraftClass
	require.NoError(t, json.Unmarshal(env.Data, &mine))
	assert.Len(t, mine, 1)

	status, _ = h.do(t, http.MethodPut, "/manageClasses/"+draft.ID+"/role", "boss@camp.io", map[string]string{"status": "published"})
	assert.Equal(t, http.StatusUnprocessableEntity, status)

	for i := 0; i < 2; i++ {
		status, _ = h.do(t, http.MethodPut, "/manageClasses/"+draft.ID+"/role", "boss@camp.io", map[string]string{"status": "approved"})
		require.Equal(t, http.StatusOK, status)
	}
	assert.EqualValues(t, 1, h.count(t, &models.Class{}))
	assert.EqualValues(t, 1, h.count(t, &models.DraftClass{}))

	_, env = h.do(t, http.MethodGet, "/classes", "", nil)
	var classes []models.Class
	require.NoError(t, json.Unmarshal(env.Data, &classes))
	require.Len(t, classes, 1)
	assert.Equal(t, "Karate", classes[0].Name)
	assert.Equal(t, "kim@camp.io", classes[0].InstructorEmail)

	status, _ = h.do(t, http.MethodPut, "/manageClasses/missing/role", "boss@camp.io", map[string]string{"status": "approved"})
	assert.Equal(t, http.StatusNotFound, status)
}

func TestPopularListsAreBoundedAndOrdered(t *testing.T) {
	h := newHarness(t)
	for i, n := range []int{3, 40, 7, 12, 0, 25, 9, 18} {
		require.NoError(t, h.db.Create(&models.Class{Name: fmt.Sprintf("Class %d", i), TotalStudents: n}).Error)
		require.NoError(t, h.db.Create(&models.Instructor{Name: fmt.Sprintf("Coach %d", i), TotalStudents: n}).Error)
	}

	for _, path := range []string{"/popular-classes", "/popular-instructors"} {
		status, env := h.do(t, http.MethodGet, path, "", nil)
		require.Equal(t, http.StatusOK, status)

		// Classes and instructors spell the counter differently.
		var rows []struct {
			ClassTotal      int `json:"totalStudents"`
			InstructorTotal int `json:"total_students"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &rows))
		require.Len(t, rows, 6, path)

		totals := make([]int, len(rows))
		for i, r := range rows {
			totals[i] = r.ClassTotal + r.InstructorTotal
		}
		assert.Equal(t, 40, totals[0], path)
		for i := 1; i < len(totals); i++ {
			assert.GreaterOrEqual(t, totals[i-1], totals[i], path)
		}
	}
}

func TestSelectionTakesPriceFromCatalog(t *testing.T) {
	h := newHarness(t)
	class := models.Class{Name: "Rowing", Price: 50, AvailableSeats: 3}
	require.NoError(t, h.db.Create(&class).Error)

	status, env := h.do(t, http.MethodPost, "/selectedClasses", "sam@camp.io",
		map[string]interface{}{"classId": class.ID, "price": 1})
	require.Equal(t, http.StatusCreated, status)
	var sel models.SelectedClass
	require.NoError(t, json.Unmarshal(env.Data, &sel))
	assert.Equal(t, 50.0, sel.Price)

	status, _ = h.do(t, http.MethodPost, "/dashboard/payment/"+sel.ID, "sam@camp.io",
		map[string]interface{}{"paymentMethodId": "pm_card_visa", "price": 1})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Zero(t, h.gw.calls)
	assert.Zero(t, h.count(t, &models.EnrolledClass{}))
}

func TestConcurrentSelectionsOfSameClass(t *testing.T) {
	h := newHarness(t)
	class := models.Class{Name: "Rowing", Price: 50, AvailableSeats: 3}
	require.NoError(t, h.db.Create(&class).Error)
	tok := token(t, "sam@camp.io")

	const attempts = 5
	statuses := make([]int, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			req := httptest.NewRequest(http.MethodPost, "/selectedClasses", bytes.NewReader([]byte(`{"classId":"`+class.ID+`"}`)))
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("Authorization", "Bearer "+tok)
			resp, err := h.app.Test(req, -1)
			if err == nil {
				statuses[i] = resp.StatusCode
				resp.Body.Close()
			}
		}(i)
	}
	wg.Wait()

	created, conflicts := 0, 0
	for _, s := range statuses {
		switch s {
		case http.StatusCreated:
			created++
		case http.StatusConflict:
			conflicts++
		}
	}
	assert.Equal(t, 1, created)
	assert.Equal(t, attempts-1, conflicts)
	assert.EqualValues(t, 1, h.count(t, &models.SelectedClass{}))
}
