// Package admintoken is the interactive side of the admin token tool: it asks
// for an admin id and the signing secret, then prints a token for the admin
// HTTP API.
package admintoken

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/dmitrijs2005/tokenbot/internal/bot/auth"
	"github.com/dmitrijs2005/tokenbot/internal/bot/services"
	"github.com/dmitrijs2005/tokenbot/internal/common"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

const secretSize = 32

var ErrNotAdmin = errors.New("id is not on the admin list")

// Run prompts on w, reads answers from reader and writes the token to w.
// An empty secret answer falls back to configuredSecret. When that is empty
// too, a fresh secret is generated and printed so it can be configured.
func Run(reader *bufio.Reader, w io.Writer, admins services.AllowList, configuredSecret string, validity time.Duration) error {
	answer, err := getSimpleText(reader, "Admin Telegram id", w)
	if err != nil {
		return err
	}
	adminID, err := strconv.ParseInt(answer, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid id %q: %w", answer, err)
	}
	if !admins.Contains(adminID) {
		return ErrNotAdmin
	}

	secret, err := getSecret(w)
	if err != nil {
		return err
	}
	defer common.Wipe(secret)
	if len(secret) == 0 {
		secret = []byte(configuredSecret)
	}
	if len(secret) == 0 {
		generated, err := common.MakeRandHexString(secretSize)
		if err != nil {
			return fmt.Errorf("generate secret: %w", err)
		}
		if _, err := fmt.Fprintf(w, "Generated secret, set it as BOT_JWT_SECRET:\n%s\n", generated); err != nil {
			return err
		}
		secret = []byte(generated)
	}

	token, err := auth.GenerateToken(adminID, secret, validity)
	if err != nil {
		return fmt.Errorf("sign token: %w", err)
	}

	_, err = fmt.Fprintf(w, "Token (valid until %s):\n%s\n", time.Now().Add(validity).Format(time.RFC3339), token)
	return err
}

func getSimpleText(reader *bufio.Reader, prompt string, w io.Writer) (string, error) {
	if _, err := fmt.Fprint(w, prompt+"\n> "); err != nil {
		return "", err
	}
	line, err := reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && len(line) > 0 {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// getSecret reads the signing secret without echo.
func getSecret(w io.Writer) ([]byte, error) {
	if _, err := fmt.Fprint(w, "Signing secret (empty for configured): "); err != nil {
		return nil, err
	}
	s, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return nil, err
	}
	return s, nil
}
