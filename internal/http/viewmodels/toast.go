package viewmodels

// ToastViewData is a transient notification shown once at the top of a page.
type ToastViewData struct {
	Category    string `json:"category"` // success, error, warning or info
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}
