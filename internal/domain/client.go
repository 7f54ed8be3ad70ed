package domain

type Client struct {
	ID        int32  `db:"client_id" json:"id"`
	FirstName string `db:"first_name" json:"first_name"`
	LastName  string `db:"last_name" json:"last_name"`
}

func (c Client) DisplayName() string {
	return c.FirstName + " " + c.LastName
}
