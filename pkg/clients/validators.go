package clients

type ListClientsQuery struct {
	Limit  int `query:"limit" json:"limit,omitempty" default:"50" validate:"min=1,max=200"`
	Offset int `query:"offset" json:"offset,omitempty" validate:"min=0"`
}

type CreateClientPayload struct {
	Name string `json:"name" mod:"trim" validate:"required,max=200"`
}
