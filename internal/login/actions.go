package login

import (
	"bufio"
	"fmt"
	"os"

	"github.com/dtnitsch/timeline-digest/internal/common"
	"github.com/dtnitsch/timeline-digest/pkg/browser"
	"github.com/urfave/cli/v2"
)

const loginURL = "https://x.com/login"

// LoginAction opens a visible browser for a manual sign-in, then exports the
// session cookies so later headless runs reach the authenticated timeline.
func LoginAction(c *cli.Context) error {
	logger := common.NewLogger(c)

	cfg, err := common.LoadConfig(c)
	if err != nil {
		return err
	}

	// Always headful here; the user has to type their credentials.
	session, err := browser.NewChrome(c.Context, browser.Options{
		UserAgent: cfg.UserAgent,
		Headless:  false,
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to start browser session: %w", err)
	}
	defer session.Close()

	if err := session.Navigate(loginURL); err != nil {
		return fmt.Errorf("failed to open login page: %w", err)
	}

	fmt.Println("Log in in the browser window, then press Enter here to save cookies...")
	reader := bufio.NewReader(os.Stdin)
	if _, err := reader.ReadString('\n'); err != nil {
		return fmt.Errorf("failed to read confirmation: %w", err)
	}

	cookies, err := session.ExportCookies()
	if err != nil {
		return fmt.Errorf("failed to export cookies: %w", err)
	}
	if err := browser.SaveCookies(cfg.CookiesFile, cookies); err != nil {
		return fmt.Errorf("failed to save cookies: %w", err)
	}

	fmt.Printf("Saved %d cookies to %s\n", len(cookies), cfg.CookiesFile)
	return nil
}
