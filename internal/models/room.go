package models

// Room is a numbered consultation room that doctors can be assigned to.
type Room struct {
	BaseModel
	Number    string `gorm:"uniqueIndex;size:20;not null" json:"number"`
	Name      string `gorm:"size:100" json:"name,omitempty"`
	Available bool   `gorm:"not null;default:true" json:"available"`

	Doctors []User `gorm:"foreignKey:RoomID" json:"-"`
}
