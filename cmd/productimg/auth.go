package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"
	"productimg/pkg/auth"
	"productimg/pkg/ui"
)

var profileName string

// authCmd represents the auth command
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the Unsplash access key",
	Long: `Manage the stored Unsplash access key.

Keys are stored using:
  - System keychain (when available)
  - Encrypted file with PBKDF2 key derivation
  - Environment variables (read only)`,
}

// loginCmd represents the auth login command
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Store an Unsplash access key",
	Long: `Store an Unsplash access key in the system keychain or an encrypted file.

The key is read from the terminal without echo.`,
	Example: `  # Interactive login
  productimg auth login

  # Keep a second key under its own profile
  productimg auth login --profile staging`,
	Args: cobra.NoArgs,
	RunE: runLogin,
}

// logoutCmd represents the auth logout command
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the stored access key",
	Args:  cobra.NoArgs,
	RunE:  runLogout,
}

// statusCmd represents the auth status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show which access key will be used",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(logoutCmd)
	authCmd.AddCommand(statusCmd)

	authCmd.PersistentFlags().StringVar(&profileName, "profile", auth.DefaultProfile, "credential profile name")
}

func runLogin(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager()
	if err != nil {
		ui.PrintError("Failed to initialize credential manager", err.Error())
		return err
	}

	auth.ShowAccessKeyGuide(os.Stdout)
	fmt.Println()

	if _, source, err := manager.Retrieve(profileName); err == nil {
		fmt.Printf("A key for '%s' already exists in the %s store. Replace it? (y/N): ", profileName, source)
		reader := bufio.NewReader(os.Stdin)
		input, _ := reader.ReadString('\n')
		if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(input)), "y") {
			return nil
		}
	}

	fmt.Print("Access key: ")
	key, err := readPassword()
	if err != nil {
		ui.PrintError("Failed to read access key", err.Error())
		return err
	}

	stored, err := manager.Store(&auth.Credential{Name: profileName, AccessKey: key})
	if err != nil {
		ui.PrintError("Failed to store access key", err.Error())
		return err
	}

	ui.PrintSuccess(fmt.Sprintf("Access key saved to the %s store", stored))
	ui.PrintInfo("Key", auth.MaskKey(key))
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager()
	if err != nil {
		ui.PrintError("Failed to initialize credential manager", err.Error())
		return err
	}

	if err := manager.Delete(profileName); err != nil {
		if errors.Is(err, auth.ErrCredentialsNotFound) {
			ui.PrintWarning("No stored key", profileName)
			return nil
		}
		ui.PrintError("Failed to remove access key", err.Error())
		return err
	}

	ui.PrintSuccess(fmt.Sprintf("Removed access key for '%s'", profileName))
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager()
	if err != nil {
		ui.PrintError("Failed to initialize credential manager", err.Error())
		return err
	}

	ui.PrintInfo("Stores", strings.Join(manager.StoreNames(), ", "))

	cred, source, err := manager.Retrieve(profileName)
	if err != nil {
		ui.PrintWarning("No access key stored", "run 'productimg auth login'")
		return nil
	}

	ui.PrintInfo("Profile", cred.Name)
	ui.PrintInfo("Key", auth.MaskKey(cred.AccessKey))
	ui.PrintInfo("Source", source)
	if !cred.LastModified.IsZero() {
		ui.PrintInfo("Updated", cred.LastModified.Format("2006-01-02 15:04"))
	}
	return nil
}

// readPassword reads a line without echo when stdin is a terminal
func readPassword() (string, error) {
	if term.IsTerminal(int(syscall.Stdin)) {
		password, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		if err == nil {
			return strings.TrimSpace(string(password)), nil
		}
	}

	reader := bufio.NewReader(os.Stdin)
	input, err := reader.ReadString('\n')
	if err != nil && input == "" {
		return "", err
	}
	return strings.TrimSpace(input), nil
}
