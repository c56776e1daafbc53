package model

// Order is one intake batch. It is written once and never changed.
type Order struct {
	BaseModel
}

func (*Order) TableName() string {
	return "order"
}
