package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/labstack/echo/v5"
	"github.com/user-admin/user-admin/internal/http/viewmodels"
	"github.com/user-admin/user-admin/internal/http/views"
	"github.com/user-admin/user-admin/internal/metrics"
	"github.com/user-admin/user-admin/internal/userapi"
	"github.com/user-admin/user-admin/internal/users"
)

const (
	toastAdded        = "Add Successfully"
	toastAddFailed    = "Can not add new item"
	toastUpdated      = "Update Successfully"
	toastDeleted      = "Delete Successfully"
	toastDeleteFailed = "Can not delete"
	toastLoadFailed   = "Can not load users"
	toastSignedOut    = "Signed out"
)

// usersPageState is everything the users page needs besides the roster.
type usersPageState struct {
	page    int
	editKey string
	form    users.Form
	errs    users.FieldErrors
	toast   *viewmodels.ToastViewData
}

func (h *Handlers) HandleRoot(c *echo.Context) error {
	return c.Redirect(http.StatusSeeOther, "/users")
}

func (h *Handlers) HandleUsers(c *echo.Context) error {
	state := usersPageState{page: parsePageParam(c)}

	roster, err := h.ensureRoster(c)
	if err != nil {
		if ctxErr := c.Request().Context().Err(); ctxErr != nil {
			return ctxErr
		}
		h.logger().Warn("load users failed", "error", err)
		toast := toastError(toastLoadFailed)
		state.toast = &toast
	}

	if key := strings.TrimSpace(c.QueryParam("edit")); key != "" {
		if u, ok := roster.Find(key); ok {
			state.editKey = key
			state.form = users.FormFromUser(u)
		}
	}
	return h.renderUsersPage(c, roster, state)
}

func (h *Handlers) HandleUserCreate(c *echo.Context) error {
	ctx := c.Request().Context()
	form := formFromRequest(c)
	state := usersPageState{page: parsePageParam(c), form: form}

	roster, err := h.ensureRoster(c)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		h.logger().Warn("load users before create failed", "error", err)
	}

	if errs := form.Validate(); len(errs) > 0 {
		metrics.RosterMutationsTotal.WithLabelValues("create", "invalid").Inc()
		state.errs = errs
		return h.renderUsersPage(c, roster, state)
	}

	password := h.Cfg.SignupDefaultPassword
	if err := h.api(c).Signup(ctx, userapi.SignupInputFromForm(form, password)); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		metrics.RosterMutationsTotal.WithLabelValues("create", "error").Inc()
		h.logger().Warn("create user failed", "email", form.Normalize().Email, "error", err)
		toast := toastError(toastAddFailed)
		state.toast = &toast
		return h.renderUsersPage(c, roster, state)
	}
	metrics.RosterMutationsTotal.WithLabelValues("create", "success").Inc()

	target := 1
	if roster != nil {
		u := users.User{LocalID: h.nextLocalID(roster)}
		form.Apply(&u)
		roster.Append(u)
		h.saveRoster(ctx, roster)
		target = roster.Metadata.PageCount(h.pageSize())
	}

	setFlashToast(c, toastSuccess(toastAdded))
	return redirectTo(c, views.UsersListURL(target, ""))
}

func (h *Handlers) HandleUserUpdate(c *echo.Context) error {
	ctx := c.Request().Context()
	key := strings.TrimSpace(c.Param("key"))
	page := parsePageParam(c)

	roster := h.loadRoster(ctx)
	if roster.IndexOf(key) == -1 {
		return redirectTo(c, views.UsersListURL(page, ""))
	}

	form := formFromRequest(c)
	if errs := form.Validate(); len(errs) > 0 {
		metrics.RosterMutationsTotal.WithLabelValues("update", "invalid").Inc()
		return h.renderUsersPage(c, roster, usersPageState{page: page, editKey: key, form: form, errs: errs})
	}

	roster.Update(key, form)
	h.saveRoster(ctx, roster)
	metrics.RosterMutationsTotal.WithLabelValues("update", "success").Inc()

	setFlashToast(c, toastSuccess(toastUpdated))
	return redirectTo(c, views.UsersListURL(page, ""))
}

func (h *Handlers) HandleUserDelete(c *echo.Context) error {
	ctx := c.Request().Context()
	key := strings.TrimSpace(c.Param("key"))
	page := parsePageParam(c)
	roster := h.loadRoster(ctx)

	if err := h.api(c).Delete(ctx, key); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		result := "error"
		if errors.Is(err, userapi.ErrDeleteRejected) {
			result = "rejected"
		}
		metrics.RosterMutationsTotal.WithLabelValues("delete", result).Inc()
		h.logger().Warn("delete user failed", "key", key, "error", err)
		setFlashToast(c, toastError(toastDeleteFailed))
		return redirectTo(c, views.UsersListURL(page, ""))
	}
	metrics.RosterMutationsTotal.WithLabelValues("delete", "success").Inc()

	if roster != nil && roster.Remove(key) > 0 {
		h.saveRoster(ctx, roster)
		page = users.ClampPage(page, roster.Metadata.PageCount(h.pageSize()))
	}

	setFlashToast(c, toastSuccess(toastDeleted))
	return redirectTo(c, views.UsersListURL(page, ""))
}

func (h *Handlers) HandleUsersRefresh(c *echo.Context) error {
	h.dropRoster(c.Request().Context())
	return redirectTo(c, "/users")
}

// usersAPIResponse is the JSON view of one roster page.
type usersAPIResponse struct {
	Data      []userJSON `json:"data"`
	Page      int        `json:"page"`
	PageCount int        `json:"pageCount"`
	Total     int        `json:"total"`
}

type userJSON struct {
	Key       string `json:"key"`
	ID        string `json:"_id,omitempty"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Address   string `json:"address"`
	City      string `json:"city"`
	Country   string `json:"country"`
	State     string `json:"state"`
	Role      string `json:"role,omitempty"`
	Billing   bool   `json:"billing"`
}

func (h *Handlers) HandleUsersAPI(c *echo.Context) error {
	roster, err := h.ensureRoster(c)
	if err != nil {
		if ctxErr := c.Request().Context().Err(); ctxErr != nil {
			return ctxErr
		}
		h.logger().Warn("load users failed", "error", err)
		return c.JSON(http.StatusBadGateway, map[string]string{"error": toastLoadFailed})
	}

	w := roster.Page(parsePageParam(c), h.pageSize())
	resp := usersAPIResponse{
		Data:      make([]userJSON, 0, len(w.Items)),
		Page:      w.Page,
		PageCount: w.PageCount,
		Total:     w.Total,
	}
	for _, u := range w.Items {
		form := users.FormFromUser(u)
		resp.Data = append(resp.Data, userJSON{
			Key:       u.Key(),
			ID:        u.ID,
			FirstName: form.FirstName,
			LastName:  form.LastName,
			Email:     u.Email,
			Address:   u.Address,
			City:      u.City,
			Country:   u.Country,
			State:     u.State,
			Role:      u.Role,
			Billing:   u.Billing,
		})
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *Handlers) renderUsersPage(c *echo.Context, roster *users.Roster, state usersPageState) error {
	data := h.usersViewData(c, roster, state)
	return h.RenderComponent(c, views.UsersPage(data))
}

func (h *Handlers) usersViewData(c *echo.Context, roster *users.Roster, state usersPageState) viewmodels.UsersViewData {
	w := roster.Page(state.page, h.pageSize())
	countries := users.CountryOptions()

	rows := make([]viewmodels.UserRow, 0, len(w.Items))
	for _, u := range w.Items {
		key := u.Key()
		rows = append(rows, viewmodels.UserRow{
			Key:          key,
			ID:           rowID(u),
			Name:         u.DisplayName(),
			Email:        u.Email,
			Address:      u.Address,
			City:         u.City,
			Country:      optionLabel(countries, u.Country),
			State:        optionLabel(users.StateOptions(), u.State),
			Role:         optionLabel(users.RoleOptions(), u.Role),
			EditHref:     views.UsersListURL(w.Page, key),
			DeleteAction: withPage("/users/"+url.PathEscape(key)+"/delete", w.Page),
			Editing:      key == state.editKey,
		})
	}

	form := state.form.Normalize()
	formView := viewmodels.UserFormView{
		Editing:   state.editKey != "",
		Action:    withPage("/users", w.Page),
		CancelURL: views.UsersListURL(w.Page, ""),
		FirstName: form.FirstName,
		LastName:  form.LastName,
		Email:     form.Email,
		Address:   form.Address,
		City:      form.City,
		Billing:   form.Billing,
		Countries: selectOptions(countries, form.Country),
		States:    selectOptions(users.StateOptions(), form.State),
		Roles:     selectOptions(users.RoleOptions(), form.Role),
		Errors:    map[string]string(state.errs),
	}
	if formView.Editing {
		formView.Action = withPage("/users/"+url.PathEscape(state.editKey), w.Page)
	}

	layout := h.LayoutData(c, "Users")
	if state.toast != nil {
		layout.Toast = state.toast
	}

	return viewmodels.UsersViewData{
		Layout:     layout,
		Form:       formView,
		Rows:       rows,
		HasUsers:   len(rows) > 0,
		Pagination: paginationView(w),
	}
}

// nextLocalID derives an id for a locally appended record from the clock, bumped past
// any id already in the roster.
func (h *Handlers) nextLocalID(roster *users.Roster) int64 {
	id := h.now().UnixMilli()
	for roster.IndexOf(strconv.FormatInt(id, 10)) != -1 {
		id++
	}
	return id
}

func formFromRequest(c *echo.Context) users.Form {
	return users.Form{
		FirstName: c.FormValue(users.FieldFirstName),
		LastName:  c.FormValue(users.FieldLastName),
		Email:     c.FormValue(users.FieldEmail),
		Address:   c.FormValue(users.FieldAddress),
		City:      c.FormValue(users.FieldCity),
		Country:   c.FormValue(users.FieldCountry),
		State:     c.FormValue(users.FieldState),
		Role:      c.FormValue(users.FieldRole),
		Billing:   ParseBoolForm(c.FormValue(users.FieldBilling)),
	}
}

func withPage(path string, page int) string {
	if page <= 1 {
		return path
	}
	return path + "?page=" + strconv.Itoa(page)
}

func selectOptions(options []users.Option, selected string) []viewmodels.SelectOption {
	out := make([]viewmodels.SelectOption, 0, len(options))
	for _, opt := range options {
		out = append(out, viewmodels.SelectOption{
			Label:    opt.Label,
			Value:    opt.Value,
			Selected: opt.Value == selected,
		})
	}
	return out
}

func optionLabel(options []users.Option, value string) string {
	for _, opt := range options {
		if strings.EqualFold(opt.Value, value) {
			return opt.Label
		}
	}
	return value
}


func rowID(u users.User) string {
	if u.LocalID != 0 {
		return strconv.FormatInt(u.LocalID, 10)
	}
	return ""
}
