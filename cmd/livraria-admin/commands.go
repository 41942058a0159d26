package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/rafaelq80/livraria-react-sub000/internal/adapters/notice"
	"github.com/rafaelq80/livraria-react-sub000/internal/bootstrap"
	domainauth "github.com/rafaelq80/livraria-react-sub000/internal/domain/auth"
	httpx "github.com/rafaelq80/livraria-react-sub000/internal/http"
	"github.com/rafaelq80/livraria-react-sub000/internal/service"
	"golang.org/x/term"
)

type loginOptions struct {
	Usuario    string
	SenhaStdin bool
}

type statusOptions struct {
	JSON bool
}

type checkAccessOptions struct {
	Section string
}

// openSession builds the session against the configured storage and waits for bootstrap.
func openSession(cc *commandContext) (*service.SessionService, bootstrap.CloseFunc, error) {
	svc, closeFn, err := bootstrap.BuildSession(cc.Ctx, bootstrap.SessionDeps{
		Config:   &cc.Config,
		Notifier: notice.NewWriter(cc.Stderr),
		Logger:   cc.Logger,
	})
	if err != nil {
		return nil, nil, err
	}
	if err := svc.Bootstrap(cc.Ctx); err != nil {
		if cerr := closeFn(); cerr != nil {
			err = errors.Join(err, cerr)
		}
		return nil, nil, err
	}
	return svc, closeFn, nil
}

func closeSession(cc *commandContext, closeFn bootstrap.CloseFunc) {
	if err := closeFn(); err != nil {
		cc.Logger.Warn("close session storage failed", "error", err)
	}
}

func runLogin(cc *commandContext, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	fs.SetOutput(cc.Stderr)

	var opts loginOptions
	fs.StringVar(&opts.Usuario, "usuario", "", "Login name (required)")
	fs.BoolVar(&opts.SenhaStdin, "senha-stdin", false, "Read the password from the first line of stdin")
	if err := fs.Parse(args); err != nil {
		return err
	}
	opts.Usuario = strings.TrimSpace(opts.Usuario)
	if opts.Usuario == "" {
		return errors.New("--usuario is required")
	}

	senha, err := readSenha(cc, opts)
	if err != nil {
		return err
	}
	if senha == "" {
		return errors.New(httpx.NoticeMissingCredentials)
	}

	svc, closeFn, err := openSession(cc)
	if err != nil {
		return err
	}
	defer closeSession(cc, closeFn)

	if err := svc.Login(cc.Ctx, domainauth.Credentials{Usuario: opts.Usuario, Senha: senha}); err != nil {
		return err
	}
	return printState(cc.Stdout, svc.State())
}

func readSenha(cc *commandContext, opts loginOptions) (string, error) {
	if opts.SenhaStdin {
		line, err := bufio.NewReader(cc.Stdin).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", fmt.Errorf("read password from stdin: %w", err)
		}
		return strings.TrimRight(line, "\r\n"), nil
	}
	if cc.ReadPassword == nil {
		return "", errors.New("no password source available (use --senha-stdin)")
	}
	return cc.ReadPassword("Senha: ")
}

// promptPassword reads from the controlling terminal with echo disabled.
func promptPassword(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New("no terminal available for interactive password prompt (use --senha-stdin)")
	}
	if err := writef(os.Stderr, "%s", prompt); err != nil {
		return "", err
	}
	b, err := term.ReadPassword(fd)
	_ = writef(os.Stderr, "\n")
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(b), nil
}

func runLogout(cc *commandContext, args []string) error {
	fs := flag.NewFlagSet("logout", flag.ContinueOnError)
	fs.SetOutput(cc.Stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}

	svc, closeFn, err := openSession(cc)
	if err != nil {
		return err
	}
	defer closeSession(cc, closeFn)

	if err := svc.Logout(cc.Ctx); err != nil {
		return err
	}
	return writef(cc.Stdout, "Sessão encerrada.\n")
}

func runStatus(cc *commandContext, args []string) error {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	fs.SetOutput(cc.Stderr)

	var opts statusOptions
	fs.BoolVar(&opts.JSON, "json", false, "Print the state as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	svc, closeFn, err := openSession(cc)
	if err != nil {
		return err
	}
	defer closeSession(cc, closeFn)

	state := svc.State()
	if opts.JSON {
		return printStateJSON(cc.Stdout, state)
	}
	return printState(cc.Stdout, state)
}

func runCheckAccess(cc *commandContext, args []string) error {
	fs := flag.NewFlagSet("check-access", flag.ContinueOnError)
	fs.SetOutput(cc.Stderr)

	var opts checkAccessOptions
	fs.StringVar(&opts.Section, "section", "", "Section slug, e.g. autores or usuarios (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	sections := httpx.DefaultSections(cc.Config.Auth.CatalogRoles, cc.Config.Auth.AdminRoles)
	var target *httpx.Section
	for i := range sections {
		if sections[i].Slug == opts.Section {
			target = &sections[i]
			break
		}
	}
	if target == nil {
		return fmt.Errorf("unknown section %q", opts.Section)
	}

	svc, closeFn, err := openSession(cc)
	if err != nil {
		return err
	}
	defer closeSession(cc, closeFn)

	state := svc.State()
	switch {
	case !state.IsAuthenticated:
		return writef(cc.Stdout, "%s: login required\n", target.Path())
	case !domainauth.HasAnyRole(state.Identity, target.Roles...):
		return writef(cc.Stdout, "%s: forbidden (requires one of %s)\n", target.Path(), strings.Join(target.Roles, ", "))
	default:
		return writef(cc.Stdout, "%s: allowed\n", target.Path())
	}
}

func printState(w io.Writer, state domainauth.State) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	rows := [][2]string{
		{"Authenticated", fmt.Sprint(state.IsAuthenticated)},
		{"Admin", fmt.Sprint(state.IsAdmin)},
	}
	if state.IsAuthenticated {
		rows = append(rows,
			[2]string{"ID", fmt.Sprint(state.Identity.ID)},
			[2]string{"Nome", state.Identity.Nome},
			[2]string{"Usuario", state.Identity.Usuario},
			[2]string{"Roles", strings.Join(state.Identity.Roles.Names(), ", ")},
		)
	}
	for _, row := range rows {
		if err := writef(tw, "%s:\t%s\n", row[0], row[1]); err != nil {
			return err
		}
	}
	return tw.Flush()
}

type stateView struct {
	IsAuthenticated bool     `json:"isAuthenticated"`
	IsAdmin         bool     `json:"isAdmin"`
	ID              int      `json:"id,omitempty"`
	Nome            string   `json:"nome,omitempty"`
	Usuario         string   `json:"usuario,omitempty"`
	Roles           []string `json:"roles"`
}

// printStateJSON never includes the token.
func printStateJSON(w io.Writer, state domainauth.State) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(stateView{
		IsAuthenticated: state.IsAuthenticated,
		IsAdmin:         state.IsAdmin,
		ID:              state.Identity.ID,
		Nome:            state.Identity.Nome,
		Usuario:         state.Identity.Usuario,
		Roles:           state.Identity.Roles.Names(),
	})
}
