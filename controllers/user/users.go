package usercontroller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/storeline/storefront-api/errs"
	"github.com/storeline/storefront-api/logger"
	"github.com/storeline/storefront-api/middleware"
	"github.com/storeline/storefront-api/models"
)

type RegistrationInput struct {
	FirebaseUID string `json:"firebase_uid" binding:"required"`
	FirstName   string `json:"first_name" binding:"required"`
	LastName    string `json:"last_name" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	Phone       string `json:"phone"`
}

// Register creates a user and their cart in one transaction. Duplicate email
// or UID is a conflict, enforced by the unique indexes so two racing
// registrations cannot both succeed.
func Register(db *gorm.DB, input RegistrationInput) (*models.User, error) {
	user := models.User{
		FirebaseUID: input.FirebaseUID,
		FirstName:   input.FirstName,
		LastName:    input.LastName,
		Email:       input.Email,
		Phone:       input.Phone,
		Role:        models.RoleCustomer,
		Active:      true,
	}
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		return tx.Create(&models.Cart{UserID: user.ID}).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, errs.ErrAlreadyExists
		}
		return nil, err
	}

	logger.Get().Info("user registered", zap.String("email", user.Email))
	return &user, nil
}

// POST /users/register
func RegisterHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input RegistrationInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		user, err := Register(db, input)
		if err != nil {
			c.JSON(errs.Status(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, user)
	}
}

// GET /users/profile
func GetProfileHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, middleware.CurrentUser(c))
	}
}

type UpdateProfileInput struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Phone     *string `json:"phone"`
}

// PUT /users/profile updates the mutable profile fields. Email and UID are
// fixed for the life of the account.
func UpdateProfileHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := middleware.CurrentUser(c)

		var input UpdateProfileInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		updates := make(map[string]interface{})
		if input.FirstName != nil {
			updates["first_name"] = *input.FirstName
		}
		if input.LastName != nil {
			updates["last_name"] = *input.LastName
		}
		if input.Phone != nil {
			updates["phone"] = *input.Phone
		}

		if len(updates) > 0 {
			if err := db.Model(user).Updates(updates).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update profile"})
				return
			}
		}
		c.JSON(http.StatusOK, user)
	}
}

// GET /users/:id (admin)
func GetUserByIDHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var user models.User
		if err := db.First(&user, "id = ?", c.Param("id")).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				e := errs.NotFound("user")
				c.JSON(errs.Status(e), gin.H{"error": e.Error()})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch user"})
			return
		}
		c.JSON(http.StatusOK, user)
	}
}

// SetActive flips the soft active flag; accounts are never deleted.
func SetActive(db *gorm.DB, userID string, active bool) error {
	res := db.Model(&models.User{}).Where("id = ?", userID).Update("active", active)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errs.NotFound("user")
	}
	return nil
}

// POST /users/:id/deactivate (admin)
func DeactivateUserHandler(db *gorm.DB) gin.HandlerFunc {
	return setActiveHandler(db, false, "user deactivated")
}

// POST /users/:id/activate (admin)
func ActivateUserHandler(db *gorm.DB) gin.HandlerFunc {
	return setActiveHandler(db, true, "user activated")
}

func setActiveHandler(db *gorm.DB, active bool, message string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := SetActive(db, c.Param("id"), active); err != nil {
			c.JSON(errs.Status(err), gin.H{"error": err.Error()})
			return
		}
		logger.Get().Info(message, zap.String("user_id", c.Param("id")))
		c.JSON(http.StatusOK, gin.H{"message": message})
	}
}
