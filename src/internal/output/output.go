// Package output prints resolved addresses, one line per address through a
// fasttemplate line template, or on a single comma-separated line in
// greppable mode.
package output

import (
	"bufio"
	"fmt"
	"io"
	"net/netip"
	"strconv"
	"strings"

	"github.com/valyala/fasttemplate"
)

const (
	startTag = "{{"
	endTag   = "}}"

	TagIP     = "ip"
	TagFamily = "family"
	TagIndex  = "index"
)

// Formatter writes address lists.
type Formatter struct {
	tmpl      *fasttemplate.Template
	greppable bool
}

// NewFormatter creates a Formatter for the given line template. The template
// may use {{ip}}, {{family}} ("ipv4" or "ipv6") and {{index}} (1-based).
func NewFormatter(template string, greppable bool) (*Formatter, error) {
	if err := ValidateTemplate(template); err != nil {
		return nil, err
	}
	tmpl, err := fasttemplate.NewTemplate(template, startTag, endTag)
	if err != nil {
		return nil, err
	}
	return &Formatter{tmpl: tmpl, greppable: greppable}, nil
}

// ValidateTemplate checks that template is well-formed and uses known
// variables only.
func ValidateTemplate(template string) error {
	tmpl, err := fasttemplate.NewTemplate(template, startTag, endTag)
	if err != nil {
		return fmt.Errorf("invalid output template: %w", err)
	}
	_, err = tmpl.ExecuteFuncStringWithErr(func(w io.Writer, tag string) (int, error) {
		switch strings.TrimSpace(tag) {
		case TagIP, TagFamily, TagIndex:
			return 0, nil
		default:
			return 0, fmt.Errorf("unknown template variable %q", tag)
		}
	})
	return err
}

// Write prints addrs to w.
func (f *Formatter) Write(w io.Writer, addrs []netip.Addr) error {
	bw := bufio.NewWriter(w)

	if f.greppable {
		for i, addr := range addrs {
			if i > 0 {
				if err := bw.WriteByte(','); err != nil {
					return err
				}
			}
			if _, err := bw.WriteString(addr.String()); err != nil {
				return err
			}
		}
		if len(addrs) > 0 {
			if err := bw.WriteByte('\n'); err != nil {
				return err
			}
		}
		return bw.Flush()
	}

	for i, addr := range addrs {
		if _, err := f.tmpl.ExecuteFunc(bw, lineTagFunc(i, addr)); err != nil {
			return err
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Family returns "ipv4" or "ipv6".
func Family(addr netip.Addr) string {
	if addr.Is4() {
		return "ipv4"
	}
	return "ipv6"
}

func lineTagFunc(i int, addr netip.Addr) fasttemplate.TagFunc {
	return func(w io.Writer, tag string) (int, error) {
		switch strings.TrimSpace(tag) {
		case TagIP:
			return io.WriteString(w, addr.String())
		case TagFamily:
			return io.WriteString(w, Family(addr))
		case TagIndex:
			return io.WriteString(w, strconv.Itoa(i+1))
		default:
			return 0, fmt.Errorf("unknown template variable %q", tag)
		}
	}
}
