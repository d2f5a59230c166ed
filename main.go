package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/lotas/lernbruecke/internal/applog"
	"github.com/lotas/lernbruecke/internal/auth"
	"github.com/lotas/lernbruecke/internal/backup"
	"github.com/lotas/lernbruecke/internal/bridge"
	"github.com/lotas/lernbruecke/internal/courses"
	"github.com/lotas/lernbruecke/internal/orgs"
	"github.com/lotas/lernbruecke/internal/store"
	"github.com/lotas/lernbruecke/internal/surface"
	"github.com/lotas/lernbruecke/internal/tui"
)

const defaultPort = 19292

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "login":
			runLogin(os.Args[2:])
			return
		case "signup":
			runSignup(os.Args[2:])
			return
		case "logout":
			runLogout(os.Args[2:])
			return
		case "whoami":
			runWhoami(os.Args[2:])
			return
		case "orgs":
			runOrgs(os.Args[2:])
			return
		case "courses":
			runCourses(os.Args[2:])
			return
		case "export":
			runExport(os.Args[2:])
			return
		case "import":
			runImport(os.Args[2:])
			return
		case "help", "--help", "-h":
			printHelp()
			return
		}
	}

	fs := flag.NewFlagSet("lernbruecke", flag.ExitOnError)
	port := fs.Int("port", resolvePort(), "WebSocket port the browser surface connects to")
	baseURL := fs.String("base-url", "", "Platform base URL (env: LERNBRUECKE_BASE_URL)")
	dbPath := fs.String("db", "", "Session database path")
	fs.Parse(os.Args[1:])

	if err := applog.Init(dataDir()); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing log: %v\n", err)
	}
	defer applog.Close()

	db := openStore(*dbPath)
	defer db.Close()

	gw := newGateway(db, *baseURL)
	srv := surface.New(*port)
	bus := bridge.NewBus()
	br := bridge.New(db, srv, bus, gw, gw.BaseURL)
	br.History = db

	model := tui.NewModel(db, gw, br, srv, bus)
	p := tea.NewProgram(model, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printHelp() {
	fmt.Print(`lernbruecke — terminal companion for LearningBases

Usage:
  lernbruecke                                  Start the TUI (default)
    --port <n>           WebSocket port for the browser surface (default: 19292)
    --base-url <url>     Platform base URL (env: LERNBRUECKE_BASE_URL)
    --db <path>          Session database path

  lernbruecke login                            Sign in and persist the session
    --user <name>        Username or email (prompted when omitted)

  lernbruecke signup                           Create an account
    --first <name>  --last <name>  --username <name>  --email <addr>

  lernbruecke logout                           Clear the stored session

  lernbruecke whoami                           Show the stored session

  lernbruecke orgs                             List your organizations

  lernbruecke courses                          List courses in the selected organization

  lernbruecke export [--out <file>]            Write a session backup archive
  lernbruecke import <file>                    Restore a session backup archive

Environment:
  LERNBRUECKE_BASE_URL   Platform base URL (overridden by --base-url)
  LERNBRUECKE_PORT       Surface WebSocket port (overridden by --port)
  LERNBRUECKE_DATA_DIR   Data directory for database and log
  LERNBRUECKE_DEBUG      Enable debug log lines
`)
}

// --- Shared helpers ---

func resolvePort() int {
	if v := os.Getenv("LERNBRUECKE_PORT"); v != "" {
		var p int
		if _, err := fmt.Sscanf(v, "%d", &p); err == nil && p > 0 {
			return p
		}
	}
	return defaultPort
}

func dataDir() string {
	if dir := os.Getenv("LERNBRUECKE_DATA_DIR"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".local", "share", "lernbruecke")
}

func openStore(path string) *store.DB {
	if path == "" {
		path = filepath.Join(dataDir(), "lernbruecke.db")
	}
	db, err := store.Open(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening session database: %v\n", err)
		os.Exit(1)
	}
	return db
}

func newGateway(s store.Session, baseURL string) *auth.Gateway {
	gw := auth.New(s)
	if baseURL == "" {
		baseURL = os.Getenv("LERNBRUECKE_BASE_URL")
	}
	if baseURL != "" {
		gw.BaseURL = strings.TrimRight(baseURL, "/")
	}
	return gw
}

func promptLine(label string) string {
	fmt.Print(label)
	reader := bufio.NewReader(os.Stdin)
	line, _ := reader.ReadString('\n')
	return strings.TrimSpace(line)
}

func promptPassword(label string) string {
	fmt.Print(label)
	pw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		// Not a terminal; fall back to a plain read.
		return promptLine("")
	}
	return strings.TrimSpace(string(pw))
}

// --- Subcommands ---

func runLogin(args []string) {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	user := fs.String("user", "", "Username or email")
	baseURL := fs.String("base-url", "", "Platform base URL")
	dbPath := fs.String("db", "", "Session database path")
	fs.Parse(args)

	db := openStore(*dbPath)
	defer db.Close()
	gw := newGateway(db, *baseURL)

	name := *user
	if name == "" {
		name = promptLine("Username or email: ")
	}
	password := promptPassword("Password: ")

	sess, err := gw.Login(context.Background(), name, password)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Login failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Signed in as %s\n", sess.User.DisplayName())
}

func runSignup(args []string) {
	fs := flag.NewFlagSet("signup", flag.ExitOnError)
	first := fs.String("first", "", "First name")
	last := fs.String("last", "", "Last name")
	username := fs.String("username", "", "Username")
	email := fs.String("email", "", "Email address")
	baseURL := fs.String("base-url", "", "Platform base URL")
	dbPath := fs.String("db", "", "Session database path")
	fs.Parse(args)

	db := openStore(*dbPath)
	defer db.Close()
	gw := newGateway(db, *baseURL)

	if *first == "" {
		*first = promptLine("First name: ")
	}
	if *last == "" {
		*last = promptLine("Last name: ")
	}
	if *username == "" {
		*username = promptLine("Username: ")
	}
	if *email == "" {
		*email = promptLine("Email: ")
	}
	password := promptPassword("Password: ")

	sess, err := gw.Signup(context.Background(), *first, *last, *username, *email, password)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Signup failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Account created. Signed in as %s\n", sess.User.DisplayName())
}

func runLogout(args []string) {
	fs := flag.NewFlagSet("logout", flag.ExitOnError)
	dbPath := fs.String("db", "", "Session database path")
	fs.Parse(args)

	db := openStore(*dbPath)
	defer db.Close()

	auth.New(db).Logout()
	fmt.Println("Signed out.")
}

func runWhoami(args []string) {
	fs := flag.NewFlagSet("whoami", flag.ExitOnError)
	dbPath := fs.String("db", "", "Session database path")
	fs.Parse(args)

	db := openStore(*dbPath)
	defer db.Close()

	user, ok := db.User()
	if !ok {
		fmt.Println("Not signed in.")
		return
	}
	fmt.Printf("%s <%s>\n", user.DisplayName(), user.Email)
	if org, ok := db.OrganizationID(); ok && org != "" {
		fmt.Printf("Organization: %s\n", org)
	} else {
		fmt.Println("Organization: default")
	}
	if url, ok := db.LastURL(); ok && url != "" {
		fmt.Printf("Last page: %s\n", url)
	}
}

func runOrgs(args []string) {
	fs := flag.NewFlagSet("orgs", flag.ExitOnError)
	baseURL := fs.String("base-url", "", "Platform base URL")
	dbPath := fs.String("db", "", "Session database path")
	fs.Parse(args)

	db := openStore(*dbPath)
	defer db.Close()

	cli := orgs.NewClient(db)
	if *baseURL == "" {
		*baseURL = os.Getenv("LERNBRUECKE_BASE_URL")
	}
	if *baseURL != "" {
		cli.BaseURL = strings.TrimRight(*baseURL, "/")
	}

	list, err := cli.List(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if len(list) == 0 {
		fmt.Println("No organizations.")
		return
	}

	selected, _ := db.OrganizationID()
	for _, o := range list {
		marker := " "
		if o.ID == selected {
			marker = "*"
		}
		fmt.Printf("%s %-30s %-12s %s\n", marker, o.Label(), o.Membership.Role, o.ID)
	}
}

func runCourses(args []string) {
	fs := flag.NewFlagSet("courses", flag.ExitOnError)
	baseURL := fs.String("base-url", "", "Platform base URL")
	dbPath := fs.String("db", "", "Session database path")
	fs.Parse(args)

	db := openStore(*dbPath)
	defer db.Close()

	cli := courses.NewClient(db)
	if *baseURL == "" {
		*baseURL = os.Getenv("LERNBRUECKE_BASE_URL")
	}
	if *baseURL != "" {
		cli.BaseURL = strings.TrimRight(*baseURL, "/")
	}

	list, err := cli.List(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if len(list) == 0 {
		fmt.Println("No courses.")
		return
	}

	fmt.Printf("%-40s %-12s %7s  %s\n", "TITLE", "DIFFICULTY", "LESSONS", "SLUG")
	for _, c := range list {
		title := c.Title
		if len(title) > 40 {
			title = title[:39] + "…"
		}
		fmt.Printf("%-40s %-12s %7d  %s\n", title, c.Difficulty, c.LessonsCount, c.Slug)
	}
}

func runExport(args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	outFile := fs.String("out", "", "Output file path (default: stdout)")
	dbPath := fs.String("db", "", "Session database path")
	fs.Parse(args)

	db := openStore(*dbPath)
	defer db.Close()

	data, err := backup.Export(db, db)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error exporting session: %v\n", err)
		os.Exit(1)
	}

	if *outFile != "" {
		if err := os.WriteFile(*outFile, data, 0600); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing file: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote %d bytes to %s\n", len(data), *outFile)
		return
	}
	os.Stdout.Write(data)
}

func runImport(args []string) {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	dbPath := fs.String("db", "", "Session database path")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: lernbruecke import <file>")
		os.Exit(1)
	}

	data, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading file: %v\n", err)
		os.Exit(1)
	}

	db := openStore(*dbPath)
	defer db.Close()

	if err := backup.Import(data, db, db); err != nil {
		fmt.Fprintf(os.Stderr, "Error importing session: %v\n", err)
		os.Exit(1)
	}

	if user, ok := db.User(); ok {
		fmt.Printf("Restored session for %s\n", user.DisplayName())
	} else {
		fmt.Println("Archive imported.")
	}
}
