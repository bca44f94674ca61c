package model

// Record is one tagged money entry of an owner
type Record struct {
	Owner  string   `bson:"owner" json:"owner" validate:"required"`
	Title  string   `bson:"title" json:"title"`
	Amount float64  `bson:"amount" json:"amount" validate:"finite"` // negative for debits
	Tags   []string `bson:"tags" json:"tags"`
}
