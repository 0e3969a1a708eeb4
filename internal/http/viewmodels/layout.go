package viewmodels

type LayoutData struct {
	Title      string
	CSRFToken  string
	UserLabel  string
	SignedIn   bool
	Toast      *ToastViewData
	ActivePath string
}
