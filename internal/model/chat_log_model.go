package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type ChatLog struct {
	Id        uuid.UUID      `gorm:"type:uuid;primaryKey"`
	UserId    string         `gorm:"index"`
	Category  string         `gorm:"type:varchar(32)"`
	Question  string         `gorm:"type:text"`
	Answer    string         `gorm:"type:text"`
	Documents datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt time.Time      `gorm:"autoCreateTime"`
}

func (ChatLog) TableName() string {
	return "chat_logs"
}
