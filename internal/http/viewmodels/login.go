package viewmodels

type LoginViewData struct {
	Layout       LayoutData
	Email        string
	Next         string
	ErrorMessage string
}
