package users

// Metadata is the pagination descriptor returned by the list endpoint.
type Metadata struct {
	Limit int
	Page  int
	Total int
}

// PageCount returns ceil(Total / pageSize).
func (m Metadata) PageCount(pageSize int) int {
	if pageSize < 1 || m.Total <= 0 {
		return 0
	}
	return (m.Total + pageSize - 1) / pageSize
}

// Roster is the in-memory list rendered by the users page. Mutations are applied
// locally and never reconciled with the server.
type Roster struct {
	Users    []User
	Metadata Metadata
}

// NewRoster builds a roster from one list response.
func NewRoster(list []User, meta Metadata) *Roster {
	users := make([]User, len(list))
	copy(users, list)
	if meta.Total < len(users) {
		meta.Total = len(users)
	}
	return &Roster{Users: users, Metadata: meta}
}

func (r *Roster) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Users)
}

// Append adds exactly one record to the end of the list.
func (r *Roster) Append(u User) {
	r.Users = append(r.Users, u)
	r.Metadata.Total++
}

// IndexOf returns the index of the first record with key, or -1.
func (r *Roster) IndexOf(key string) int {
	if r == nil || key == "" {
		return -1
	}
	for i, u := range r.Users {
		if u.Key() == key {
			return i
		}
	}
	return -1
}

func (r *Roster) Find(key string) (User, bool) {
	idx := r.IndexOf(key)
	if idx == -1 {
		return User{}, false
	}
	return r.Users[idx], true
}

// Update copies the form into the record with key. It reports false when no such
// record exists.
func (r *Roster) Update(key string, form Form) bool {
	idx := r.IndexOf(key)
	if idx == -1 {
		return false
	}
	form.Apply(&r.Users[idx])
	return true
}

// Remove filters out every record with key and returns how many were removed.
func (r *Roster) Remove(key string) int {
	if r == nil || key == "" {
		return 0
	}
	kept := r.Users[:0]
	removed := 0
	for _, u := range r.Users {
		if u.Key() == key {
			removed++
			continue
		}
		kept = append(kept, u)
	}
	for i := len(kept); i < len(r.Users); i++ {
		r.Users[i] = User{}
	}
	r.Users = kept
	r.Metadata.Total -= removed
	if r.Metadata.Total < len(r.Users) {
		r.Metadata.Total = len(r.Users)
	}
	return removed
}
