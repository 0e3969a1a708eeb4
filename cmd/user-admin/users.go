package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/user-admin/user-admin/internal/config"
	"github.com/user-admin/user-admin/internal/logging"
	"github.com/user-admin/user-admin/internal/userapi"
	"github.com/user-admin/user-admin/internal/users"
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "List, create and delete users through the user API.",
}

var usersToken string

var (
	listPage  int
	listLimit int
	listJSON  bool
)

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print one page of users.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := usersClient()
		if err != nil {
			return err
		}
		return runUsersList(cmd.Context(), client, cmd.OutOrStdout(), listPage, listLimit, listJSON)
	},
}

var (
	createForm     users.Form
	createPassword string
	createPwStdin  bool
	createGenPw    bool
)

var usersCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Validate and sign up a new user.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		client, err := newUsersClient(cfg)
		if err != nil {
			return err
		}
		password := func() (string, bool, error) {
			return resolvePassword(cmd, passwordSource{
				Flag:     createPassword,
				Stdin:    createPwStdin,
				Generate: createGenPw,
			}, cfg.SignupDefaultPassword)
		}
		return runUsersCreate(cmd.Context(), client, cmd.OutOrStdout(), createForm, password)
	},
}

var usersDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a user by id.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := usersClient()
		if err != nil {
			return err
		}
		return runUsersDelete(cmd.Context(), client, cmd.OutOrStdout(), args[0])
	},
}

type listAPI interface {
	List(ctx context.Context, page, limit int) (userapi.ListResult, error)
}

type signupAPI interface {
	Signup(ctx context.Context, in userapi.SignupInput) error
}

type deleteAPI interface {
	Delete(ctx context.Context, id string) error
}

func usersClient() (*userapi.Client, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return newUsersClient(cfg)
}

func newUsersClient(cfg config.Config) (*userapi.Client, error) {
	if token := strings.TrimSpace(usersToken); token != "" {
		cfg.UserAPIToken = token
	}
	return newAPIClient(cfg, logging.Discard())
}

func runUsersList(ctx context.Context, api listAPI, out io.Writer, page, limit int, asJSON bool) error {
	res, err := api.List(ctx, page, limit)
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}

	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(listOutput(res))
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "KEY\tNAME\tEMAIL\tCITY\tCOUNTRY\tROLE")
	for _, u := range res.Users {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", u.Key(), u.DisplayName(), u.Email, u.City, u.Country, u.Role)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(out, "page %d of %d (%d total)\n", res.Metadata.Page, res.Metadata.PageCount(res.Metadata.Limit), res.Metadata.Total)
	return nil
}

// runUsersCreate validates form before asking for a password, so an invalid form
// never prompts and never reaches the API.
func runUsersCreate(ctx context.Context, api signupAPI, out io.Writer, form users.Form, password func() (string, bool, error)) error {
	form = form.Normalize()
	if errs := form.Validate(); len(errs) > 0 {
		return exitWith(exitCodeInvalidInput, formErrorsError(errs))
	}

	pw, generated, err := password()
	if err != nil {
		return err
	}
	if err := api.Signup(ctx, userapi.SignupInputFromForm(form, pw)); err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	fmt.Fprintf(out, "created user: %s\n", form.Email)
	if generated {
		fmt.Fprintf(out, "generated password: %s\n", pw)
	}
	return nil
}

type listUser struct {
	Key     string `json:"key"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Address string `json:"address"`
	City    string `json:"city"`
	Country string `json:"country"`
	State   string `json:"state"`
	Role    string `json:"role"`
	Billing bool   `json:"billing"`
}

type listResult struct {
	Data  []listUser `json:"data"`
	Limit int        `json:"limit"`
	Page  int        `json:"page"`
	Total int        `json:"total"`
}

func listOutput(res userapi.ListResult) listResult {
	out := listResult{
		Data:  make([]listUser, 0, len(res.Users)),
		Limit: res.Metadata.Limit,
		Page:  res.Metadata.Page,
		Total: res.Metadata.Total,
	}
	for _, u := range res.Users {
		out.Data = append(out.Data, listUser{
			Key:     u.Key(),
			Name:    u.DisplayName(),
			Email:   u.Email,
			Address: u.Address,
			City:    u.City,
			Country: u.Country,
			State:   u.State,
			Role:    u.Role,
			Billing: u.Billing,
		})
	}
	return out
}

func runUsersDelete(ctx context.Context, api deleteAPI, out io.Writer, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return exitWith(exitCodeInvalidInput, errors.New("user id is required"))
	}
	if err := api.Delete(ctx, id); err != nil {
		if errors.Is(err, userapi.ErrDeleteRejected) {
			return exitWith(exitCodeDeleteRejected, fmt.Errorf("delete %s: rejected by the API", id))
		}
		return fmt.Errorf("delete %s: %w", id, err)
	}
	fmt.Fprintf(out, "deleted user: %s\n", id)
	return nil
}

// formErrorsError joins field errors in a stable order.
func formErrorsError(errs users.FieldErrors) error {
	fields := make([]string, 0, len(errs))
	for field := range errs {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, "--"+strings.ReplaceAll(field, "_", "-")+": "+errs[field])
	}
	return errors.New("invalid user: " + strings.Join(parts, "; "))
}

func init() {
	usersCmd.PersistentFlags().StringVar(&usersToken, "token", "", "Access token (defaults to USER_API_TOKEN)")
	usersCmd.AddCommand(usersListCmd, usersCreateCmd, usersDeleteCmd)

	usersListCmd.Flags().IntVar(&listPage, "page", 1, "Page number")
	usersListCmd.Flags().IntVar(&listLimit, "limit", users.DefaultPageSize, "Page size")
	usersListCmd.Flags().BoolVar(&listJSON, "json", false, "Print JSON instead of a table")

	f := usersCreateCmd.Flags()
	f.StringVar(&createForm.FirstName, "first-name", "", "First name (6-20 characters)")
	f.StringVar(&createForm.LastName, "last-name", "", "Last name (6-20 characters)")
	f.StringVar(&createForm.Email, "email", "", "Email address")
	f.StringVar(&createForm.Address, "address", "", "Street address")
	f.StringVar(&createForm.City, "city", "", "City")
	f.StringVar(&createForm.Country, "country", "", "Country code: "+optionValues(users.CountryOptions()))
	f.StringVar(&createForm.State, "state", "", "State: "+optionValues(users.StateOptions()))
	f.StringVar(&createForm.Role, "role", "", "Role: "+optionValues(users.RoleOptions()))
	f.BoolVar(&createForm.Billing, "billing", false, "Mark as billing contact")
	f.StringVar(&createPassword, "password", "", "Initial password (discouraged; prefer --password-stdin)")
	f.BoolVar(&createPwStdin, "password-stdin", false, "Read the initial password from stdin")
	f.BoolVar(&createGenPw, "generate-password", false, "Generate a random password and print it")
}

func optionValues(options []users.Option) string {
	values := make([]string, 0, len(options))
	for _, opt := range options {
		values = append(values, strconv.Quote(opt.Value))
	}
	return strings.Join(values, ", ")
}
