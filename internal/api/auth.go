package api

import (
	"net/http"                 // HTTP status codes
	"net/mail"                 // Email validation
	"regexp"                   // Regular expressions
	"spanner/internal/domain"  // Domain models
	"spanner/internal/gateway" // Payment gateway customers
	"spanner/internal/utils"   // JWT helpers
	"strings"                  // String manipulation

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
	"golang.org/x/crypto/bcrypt" // Password hashing
	"gorm.io/gorm"               // GORM ORM library
)

// RegisterRequest creates an account
type RegisterRequest struct {
	Username string `json:"username" binding:"required"` // Username must be provided
	Password string `json:"password" binding:"required"` // Password must be provided
	Email    string `json:"email"`                       // Optional contact email
	Phone    string `json:"phone"`                       // Optional contact phone
}

// LoginRequest exchanges credentials for a token
type LoginRequest struct {
	Username string `json:"username" binding:"required"` // Username must be provided
	Password string `json:"password" binding:"required"` // Password must be provided
}

// AuthResponse carries a session token
type AuthResponse struct {
	Token string `json:"token"` // JWT token
}

var (
	usernamePattern = regexp.MustCompile(`^[A-Za-z]+$`)       // Alphabetic characters only
	phonePattern    = regexp.MustCompile(`^\+?[0-9]{10,15}$`) // Digits with optional country code
)

// isValidUsername checks if the username contains only alphabetic characters
func isValidUsername(username string) bool {
	return usernamePattern.MatchString(username)
}

// isValidPassword checks if the password length is between 8 and 15 characters
func isValidPassword(password string) bool {
	return len(password) >= 8 && len(password) <= 15
}

// RegisterHandler creates a user. A gateway customer profile is created when possible,
// but registration never fails because of it.
func RegisterHandler(db *gorm.DB, gw gateway.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		if !isValidUsername(req.Username) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Username must be alphabetic only"})
			return
		}
		if !isValidPassword(req.Password) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Password must be 8-15 characters"})
			return
		}
		if req.Email != "" {
			if _, err := mail.ParseAddress(req.Email); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid email"})
				return
			}
		}
		if req.Phone != "" && !phonePattern.MatchString(req.Phone) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid phone number"})
			return
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
			return
		}
		// Lowercase username to ensure uniqueness
		user := domain.User{
			Username: strings.ToLower(req.Username), // Normalized username
			Password: string(hash),                  // Bcrypt hash
			Role:     domain.RoleUser,               // New accounts are never admins
			Email:    req.Email,                     // Contact email
			Phone:    req.Phone,                     // Contact phone
		}
		ctx := c.Request.Context()
		if err := db.WithContext(ctx).Create(&user).Error; err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Username already exists"})
			return
		}

		if gw != nil {
			customer, err := gw.CreateCustomer(ctx, gateway.CustomerRequest{
				Name:    user.Username, // Display name
				Email:   user.Email,    // Contact email
				Contact: user.Phone,    // Contact phone
			})
			if err != nil {
				logrus.WithFields(logrus.Fields{
					"user_id": user.ID,     // New user
					"error":   err.Error(), // Error message
				}).Warn("Failed to create gateway customer")
			} else if err := db.WithContext(ctx).Model(&user).Update("razorpay_customer_id", customer.ID).Error; err != nil {
				logrus.WithFields(logrus.Fields{
					"user_id": user.ID,     // New user
					"error":   err.Error(), // Error message
				}).Warn("Failed to store gateway customer")
			}
		}
		logrus.WithField("user_id", user.ID).Info("User registered")
		c.JSON(http.StatusCreated, gin.H{"message": "User registered successfully"})
	}
}

// LoginHandler authenticates a user and returns a JWT token
func LoginHandler(db *gorm.DB, jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		var user domain.User
		if err := db.WithContext(c.Request.Context()).Where("username = ?", strings.ToLower(req.Username)).First(&user).Error; err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}
		if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}
		token, err := utils.GenerateJWT(user.ID, user.Role, jwtSecret)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
			return
		}
		c.JSON(http.StatusOK, AuthResponse{Token: token})
	}
}
