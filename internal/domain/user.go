package domain

// User Model
type User struct {
	ID                 uint   `gorm:"primaryKey" json:"id"`                                         // Primary key
	Username           string `gorm:"unique;not null" json:"username"`                              // Unique username
	Password           string `gorm:"not null" json:"-"`                                            // Hashed password
	Role               string `gorm:"default:user" json:"role"`                                     // Role: user or admin
	Email              string `gorm:"size:191" json:"email,omitempty"`                              // Contact email, optional
	Phone              string `gorm:"size:20" json:"phone,omitempty"`                               // Contact phone, optional
	RazorpayCustomerID string `gorm:"size:64" json:"razorpay_customer_id,omitempty"`                // Gateway customer reference
	Wallet             Wallet `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"wallet"` // One-to-one relationship with Wallet
}

// Role values
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)
