package specification

import "gorm.io/gorm"

// ByUserID filters chat logs by the opaque user identifier.
type ByUserID struct {
	UserID string
}

func (s ByUserID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("user_id = ?", s.UserID)
}

// ByDomain filters knowledge documents by retrieval domain.
type ByDomain struct {
	Domain string
}

func (s ByDomain) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("domain = ?", s.Domain)
}

// ByCategory filters chat logs by category label.
type ByCategory struct {
	Category string
}

func (s ByCategory) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("category = ?", s.Category)
}
