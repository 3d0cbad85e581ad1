package domain

type Customer struct {
	ID        int64
	FirstName string
	LastName  string
	Email     string
}

func (c *Customer) FullName() string {
	if c.LastName == "" {
		return c.FirstName
	}
	return c.FirstName + " " + c.LastName
}
