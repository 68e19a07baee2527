package db_models

type UserRole string

const (
	RoleCustomer UserRole = "customer"
	RoleAdmin    UserRole = "admin"
)

type User struct {
	BaseModel
	Email        string   `gorm:"uniqueIndex;not null"`
	Username     string   `gorm:"uniqueIndex;not null"`
	PasswordHash string   `gorm:"not null"`
	FullName     string   `gorm:"size:100"`
	Role         UserRole `gorm:"type:varchar(16);default:'customer';not null"`
	IsActive     bool     `gorm:"default:true"`

	CreatedItems []Item     `gorm:"foreignKey:CreatedBy"`
	Purchases    []Purchase `gorm:"foreignKey:CustomerID"`
	CartItems    []CartItem `gorm:"foreignKey:UserID"`
	Payments     []Payment  `gorm:"foreignKey:UserID"`
}
