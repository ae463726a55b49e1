package handlers

import (
	"bytes"
	"html/template"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/oklog/ulid/v2"
)

var authorizePage = template.Must(template.New("authorize").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Link your account</title></head>
<body>
  <h1>Link your account</h1>
  <p>Account linking token: <code>{{.AccountLinkingToken}}</code></p>
  <p>Redirect URI: <code>{{.RedirectURI}}</code></p>
  <p><a href="{{.RedirectURISuccess}}">Complete account link</a></p>
  <p><a href="{{.RedirectURI}}">Cancel</a></p>
</body>
</html>
`))

type authorizeView struct {
	AccountLinkingToken string
	RedirectURI         string
	RedirectURISuccess  string
}

// Authorize serves the account linking login page the Messenger "Link
// Account" button points to. A fresh authorization code is issued per request
// and handed back through the success redirect.
func Authorize(c *fiber.Ctx) error {
	token := c.Query("account_linking_token")
	redirectURI := c.Query("redirect_uri")
	if redirectURI == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "redirect_uri is required",
		})
	}

	authCode := ulid.Make().String()
	view := authorizeView{
		AccountLinkingToken: token,
		RedirectURI:         redirectURI,
		RedirectURISuccess:  redirectURI + "&authorization_code=" + authCode,
	}

	var buf bytes.Buffer
	if err := authorizePage.Execute(&buf, view); err != nil {
		slog.Error("Failed to render authorize page", "error", err)
		return fiber.ErrInternalServerError
	}

	slog.Info("Serving account linking page", "authorizationCode", authCode)
	c.Type("html", "utf-8")
	return c.Send(buf.Bytes())
}
