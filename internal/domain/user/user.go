package user

import "time"

type User struct {
	ID            string    `json:"id" bson:"_id,omitempty"`
	Username      string    `json:"username" bson:"username"`
	Rating        int       `json:"rating" bson:"rating"`
	IsBot         bool      `json:"is_bot,omitempty" bson:"is_bot,omitempty"`
	BotDifficulty string    `json:"bot_difficulty,omitempty" bson:"bot_difficulty,omitempty"`
	CreatedAt     time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" bson:"updated_at"`
	Statistic     Statistic `json:"statistic" bson:"statistic"`
}

type Statistic struct {
	Wins   int `json:"wins" bson:"wins"`
	Losses int `json:"losses" bson:"losses"`
	Draws  int `json:"draws" bson:"draws"`
}
