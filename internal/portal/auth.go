package portal

import (
	"context"
	"strings"

	appErrors "github.com/myruppin/portal-companion/pkg/errors"
)

type loginRequest struct {
	LoginType string `json:"loginType"`
	Password  string `json:"password"`
	Zht       string `json:"zht"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// Login exchanges student credentials for a bearer token.
func (c *Client) Login(ctx context.Context, studentID, password string) (string, error) {
	req := loginRequest{LoginType: "student", Password: password, Zht: studentID}

	var resp loginResponse
	if err := c.postJSON(ctx, "/api/Login/Login", "", req, &resp); err != nil {
		return "", err
	}
	if resp.Token == "" {
		return "", appErrors.Clone(appErrors.ErrLoginFailed, "")
	}
	return resp.Token, nil
}

type userInfoResponse struct {
	UserInfo *struct {
		FirstName flexString `json:"smp"`
		LastName  flexString `json:"smm"`
	} `json:"userInfo"`
}

// UserName fetches the student's display name. An empty string is returned
// when the portal supplies none.
func (c *Client) UserName(ctx context.Context, token string) (string, error) {
	var resp userInfoResponse
	if err := c.postJSON(ctx, "/api/Account/UserInfo", token, "{}", &resp); err != nil {
		return "", err
	}
	if resp.UserInfo == nil {
		return "", nil
	}
	name := strings.TrimSpace(resp.UserInfo.FirstName.String() + " " + resp.UserInfo.LastName.String())
	return name, nil
}
