package paymentcontroller

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/storeline/storefront-api/models"
	"github.com/storeline/storefront-api/payment"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Order{}, &models.OrderItem{}))
	return db
}

func confirmRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/payments/confirm", ConfirmHandler(db, payment.NewGateway("")))
	return r
}

func postConfirm(t *testing.T, r *gin.Engine, intentID string) *httptest.ResponseRecorder {
	t.Helper()
	body := strings.NewReader(`{"payment_intent_id":"` + intentID + `"}`)
	req := httptest.NewRequest(http.MethodPost, "/payments/confirm", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestConfirmMarksOrderPaid(t *testing.T) {
	db := setupDB(t)

	user := models.User{
		FirebaseUID: "uid-1", FirstName: "Test", LastName: "User",
		Email: "uid-1@example.com", Role: models.RoleCustomer, Active: true,
	}
	require.NoError(t, db.Create(&user).Error)

	order := models.Order{
		OrderNumber:     "ORD-1-ABCDEF12",
		UserID:          user.ID,
		Status:          models.OrderStatusPending,
		PaymentMethod:   models.PaymentMethodCreditCard,
		PaymentStatus:   models.PaymentStatusPending,
		PaymentIntentID: "pi_simulated_test",
		TotalAmount:     31.60,
	}
	require.NoError(t, db.Create(&order).Error)

	w := postConfirm(t, confirmRouter(db), "pi_simulated_test")
	require.Equal(t, http.StatusOK, w.Code)

	var fresh models.Order
	require.NoError(t, db.First(&fresh, order.ID).Error)
	require.Equal(t, models.PaymentStatusPaid, fresh.PaymentStatus)
	require.Equal(t, models.OrderStatusConfirmed, fresh.Status)
}

func TestConfirmUnknownIntentSucceedsWithoutOrder(t *testing.T) {
	db := setupDB(t)

	// A succeeded intent with no matching order is not an error; the
	// confirmation result still comes back.
	w := postConfirm(t, confirmRouter(db), "pi_simulated_unreferenced")
	require.Equal(t, http.StatusOK, w.Code)

	var count int64
	db.Model(&models.Order{}).Count(&count)
	require.Zero(t, count)
}
