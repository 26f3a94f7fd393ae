package admin

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/chouaib-skitou/Festivio/internal/common"
	"github.com/chouaib-skitou/Festivio/internal/server/models"
	"github.com/chouaib-skitou/Festivio/internal/server/services"
)

// Creator persists Admin accounts; *services.UserService implements it.
type Creator interface {
	CreateAdmin(ctx context.Context, in services.AdminInput) (*models.User, error)
}

// Prompter reads the account details interactively.
type Prompter struct {
	In  *bufio.Reader
	Out io.Writer
	// Fd is the terminal passwords are read from.
	Fd int
}

// CreateInteractive asks for email, username and a confirmed password, then
// creates the account.
func CreateInteractive(ctx context.Context, p Prompter, svc Creator) (*models.User, error) {
	email, err := GetSimpleText(p.In, "Admin email", p.Out)
	if err != nil {
		return nil, err
	}
	username, err := GetSimpleText(p.In, "Admin username", p.Out)
	if err != nil {
		return nil, err
	}

	pw, err := GetPassword(p.Fd, "Password", p.Out)
	if err != nil {
		return nil, err
	}
	defer common.WipeByteArray(pw)

	confirm, err := GetPassword(p.Fd, "Repeat password", p.Out)
	if err != nil {
		return nil, err
	}
	defer common.WipeByteArray(confirm)

	if !bytes.Equal(pw, confirm) {
		return nil, common.ErrPasswordMismatch
	}

	user, err := svc.CreateAdmin(ctx, services.AdminInput{
		Username: username,
		Email:    email,
		Password: string(pw),
	})
	if err != nil {
		var ve *common.ValidationError
		if errors.As(err, &ve) {
			return nil, fmt.Errorf("invalid input: %w", err)
		}
		return nil, err
	}
	return user, nil
}
