package ops

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/browsion/browsion-core/internal/browsionerr"
)

// ExportCookiesJSON returns every cookie visible to the tab's context,
// serialized the same shape SetCookie accepts, so export/import round-trip
// through this package's own Cookie type.
func (o *Ops) ExportCookiesJSON(ctx context.Context, targetID string) ([]Cookie, error) {
	return o.GetCookies(ctx, targetID)
}

// ExportCookiesNetscape renders cookies in the classic Netscape cookies.txt
// format (tab-separated: domain, includeSubdomains flag, path, secure flag,
// expiry, name, value), the format curl/wget and most scrapers expect.
func (o *Ops) ExportCookiesNetscape(ctx context.Context, targetID string) (string, error) {
	cookies, err := o.GetCookies(ctx, targetID)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	b.WriteString("# Netscape HTTP Cookie File\n")
	for _, c := range cookies {
		includeSubdomains := "FALSE"
		if strings.HasPrefix(c.Domain, ".") {
			includeSubdomains = "TRUE"
		}
		secure := "FALSE"
		if c.Secure {
			secure = "TRUE"
		}
		fmt.Fprintf(&b, "%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
			c.Domain, includeSubdomains, c.Path, secure, 0, c.Name, c.Value)
	}
	return b.String(), nil
}

// ImportCookiesJSON installs every cookie in cookies via SetCookie.
func (o *Ops) ImportCookiesJSON(ctx context.Context, targetID string, cookies []Cookie) error {
	for _, c := range cookies {
		if err := o.SetCookie(ctx, targetID, c); err != nil {
			return err
		}
	}
	return nil
}

// ImportCookiesNetscape parses a cookies.txt document and installs each
// entry via SetCookie.
func (o *Ops) ImportCookiesNetscape(ctx context.Context, targetID, doc string) error {
	for _, line := range strings.Split(doc, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) != 7 {
			return browsionerr.New(browsionerr.KindInvalidArgument, "malformed netscape cookie line: %q", line)
		}
		secure, err := strconv.ParseBool(strings.ToLower(fields[3]))
		if err != nil {
			return browsionerr.New(browsionerr.KindInvalidArgument, "malformed secure flag in line: %q", line)
		}
		c := Cookie{
			Domain: fields[0],
			Path:   fields[2],
			Secure: secure,
			Name:   fields[5],
			Value:  fields[6],
		}
		if err := o.SetCookie(ctx, targetID, c); err != nil {
			return err
		}
	}
	return nil
}
