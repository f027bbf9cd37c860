package models

// DateLayout is the layout of Reagent.Date (day-month-year with time).
const DateLayout = "02-01-2006 15:04:05"

// Units lists the accepted quantity units.
var Units = []string{"µl", "ml", "L", "mg", "g", "kg"}

// Reagent is a chemical tracked in the inventory. Reagents are not owned by any user.
type Reagent struct {
	ID            uint   `json:"id" gorm:"primaryKey;autoIncrement"`
	Name          string `json:"name" gorm:"type:varchar(100);not null"`
	Concentration string `json:"concentration" gorm:"type:varchar(50);not null"`
	Manufacturer  string `json:"manufacturer" gorm:"type:varchar(100);not null"`
	CAS           string `json:"cas" gorm:"column:cas;type:varchar(30);not null"`
	Quantity      string `json:"quantity" gorm:"type:varchar(30);not null"`
	Unit          string `json:"unit" gorm:"type:varchar(10);not null"`
	Location      string `json:"location" gorm:"type:varchar(50);not null"`
	Stock         string `json:"stock" gorm:"type:varchar(50);not null"`
	Date          string `json:"date" gorm:"type:varchar(50);not null"` // Set once on create
	Comment       string `json:"comment" gorm:"type:varchar(500)"`
}
