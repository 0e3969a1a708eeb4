package viewmodels

type SelectOption struct {
	Label    string
	Value    string
	Selected bool
}

type UserFormView struct {
	Editing   bool
	Action    string
	CancelURL string
	FirstName string
	LastName  string
	Email     string
	Address   string
	City      string
	Billing   bool
	Countries []SelectOption
	States    []SelectOption
	Roles     []SelectOption
	Errors    map[string]string
}

type UserRow struct {
	Key          string
	ID           string
	Name         string
	Email        string
	Address      string
	City         string
	Country      string
	State        string
	Role         string
	EditHref     string
	DeleteAction string
	Editing      bool
}

type PageLink struct {
	Number  int
	Href    string
	Current bool
}

type PaginationView struct {
	Page        int
	PageCount   int
	Total       int
	ShowingFrom int
	ShowingTo   int
	HasPrev     bool
	HasNext     bool
	PrevHref    string
	NextHref    string
	Pages       []PageLink
}

type UsersViewData struct {
	Layout     LayoutData
	Form       UserFormView
	Rows       []UserRow
	HasUsers   bool
	Pagination PaginationView
}
