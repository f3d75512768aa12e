package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"syscall"

	"github.com/gotd/td/session"
	"github.com/gotd/td/session/tdesktop"
	"github.com/joho/godotenv"
	"github.com/mdp/qrterminal/v3"

	"github.com/blockedby/safebot/internal/config"
	"github.com/blockedby/safebot/internal/database"
	"github.com/blockedby/safebot/internal/logger"
	"github.com/blockedby/safebot/internal/migrator"
	"github.com/blockedby/safebot/internal/telegram"
	"github.com/blockedby/safebot/migrations"
)

func main() {
	fmt.Println("=== safebot telegram auth ===")
	fmt.Println("this tool logs the account in and stores the session in the database")
	fmt.Println()

	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		fail("load config", err)
	}
	if err := cfg.Validate(); err != nil {
		fail("config", err)
	}
	if err := logger.Init(logger.Options{Level: "warn"}); err != nil {
		fail("init logger", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		fail("connect to database", err)
	}
	defer db.Close()

	mg, err := migrator.NewWithFS(migrations.FS)
	if err != nil {
		fail("create migrator", err)
	}
	if err := mg.Up(ctx, cfg.DatabaseURL); err != nil {
		fail("run migrations", err)
	}

	reader := bufio.NewReader(os.Stdin)
	accounts, tdataPath := findDesktopAccounts(reader)

	if len(accounts) > 0 {
		fmt.Printf("\ndetected %d telegram desktop session(s) at: %s\n", len(accounts), tdataPath)
		fmt.Println()
		fmt.Println("choose authentication method:")
		fmt.Println("  1. scan a QR code with the telegram app (recommended)")
		fmt.Println("  2. import the telegram desktop session")
		fmt.Print("\nenter choice [1]: ")

		choice, _ := reader.ReadString('\n')
		if strings.TrimSpace(choice) == "2" {
			if err := importDesktop(ctx, cfg, db, accounts, reader); err != nil {
				fail("import session", err)
			}
			return
		}
	}

	if err := loginQR(ctx, cfg, db); err != nil {
		fail("qr login", err)
	}
}

func loginQR(ctx context.Context, cfg *config.Config, db *database.DB) error {
	manager := telegram.NewManager(cfg, db.GORM)
	defer manager.Stop()

	fmt.Println("\nopen telegram > settings > devices > link desktop device and scan:")
	err := manager.StartQR(ctx, func(url string) {
		fmt.Println()
		qrterminal.GenerateHalfBlock(url, qrterminal.L, os.Stdout)
		fmt.Println("waiting for confirmation... (the code refreshes automatically)")
	})
	switch {
	case errors.Is(err, telegram.ErrAlreadyLoggedIn):
		fmt.Println("\na session is already stored, nothing to do")
		return nil
	case err != nil:
		return err
	}

	printSelf(manager)
	return nil
}

func importDesktop(ctx context.Context, cfg *config.Config, db *database.DB, accounts []tdesktop.Account, reader *bufio.Reader) error {
	acc := accounts[0]
	if len(accounts) > 1 {
		fmt.Printf("\nfound %d telegram accounts:\n", len(accounts))
		for i := range accounts {
			fmt.Printf("  %d. Account #%d\n", i+1, i+1)
		}
		fmt.Print("\nselect account number [1]: ")
		choice, _ := reader.ReadString('\n')
		if n, err := strconv.Atoi(strings.TrimSpace(choice)); err == nil && n >= 1 && n <= len(accounts) {
			acc = accounts[n-1]
		}
	}

	data, err := session.TDesktopSession(acc)
	if err != nil {
		return fmt.Errorf("convert desktop session: %w", err)
	}
	if err := telegram.SaveSession(db.GORM, data); err != nil {
		return err
	}

	manager := telegram.NewManager(cfg, db.GORM)
	defer manager.Stop()
	if err := manager.Init(ctx); err != nil {
		return fmt.Errorf("verify session: %w", err)
	}
	printSelf(manager)
	return nil
}

func printSelf(manager *telegram.Manager) {
	fmt.Println("\n✓ authentication successful!")
	if self := manager.Self(); self != nil {
		fmt.Printf("logged in as: @%s (id %d)\n", self.Username, self.ID)
	}
	fmt.Println("the session is stored in the database; start safebot now")
}

// findDesktopAccounts looks for Telegram Desktop data in the default location
// and asks for a path when there is none.
func findDesktopAccounts(reader *bufio.Reader) ([]tdesktop.Account, string) {
	tdataPath := getTelegramDesktopPath()
	accounts, err := tdesktop.Read(tdataPath, nil)
	if err == nil && len(accounts) > 0 {
		return accounts, tdataPath
	}

	fmt.Print("telegram desktop path for session import (press enter to skip): ")
	customPath, _ := reader.ReadString('\n')
	customPath = strings.TrimSpace(customPath)
	if customPath == "" {
		return nil, ""
	}
	if !strings.HasSuffix(customPath, "tdata") {
		customPath = filepath.Join(customPath, "tdata")
	}
	accounts, err = tdesktop.Read(customPath, nil)
	if err != nil {
		fmt.Printf("cannot read %s: %v\n", customPath, err)
		return nil, ""
	}
	return accounts, customPath
}

// getTelegramDesktopPath returns the path to Telegram Desktop data directory
func getTelegramDesktopPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "Telegram Desktop", "tdata")
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", "Telegram Desktop", "tdata")
	default: // linux
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "TelegramDesktop", "tdata")
	}
}

func fail(what string, err error) {
	fmt.Printf("error: %s: %v\n", what, err)
	os.Exit(1)
}
