package share

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/khoahotran/cuervo/pkg/apperror"
)

const publicPath = "/public/"

type Link struct {
	PublicURL string `json:"public_url"`
	ImageURL  string `json:"qr_url"`
}

// QRGenerator turns an owner id into the public sharing URL and the image
// request for the third-party QR renderer. The same owner always yields the
// same link.
type QRGenerator struct {
	publicBaseURL string
	endpoint      *url.URL
	size          int

	mu   sync.Mutex
	last Link
}

func NewQRGenerator(publicBaseURL, endpoint string, size int) (*QRGenerator, error) {
	ep, err := url.Parse(endpoint)
	if err != nil || ep.Scheme == "" || ep.Host == "" {
		return nil, fmt.Errorf("invalid QR endpoint %q", endpoint)
	}
	if size <= 0 {
		size = 200
	}
	return &QRGenerator{
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		endpoint:      ep,
		size:          size,
	}, nil
}

func (g *QRGenerator) PublicURL(ownerID uuid.UUID) string {
	return g.publicBaseURL + publicPath + ownerID.String()
}

func (g *QRGenerator) Generate(ownerID uuid.UUID) (Link, error) {
	if ownerID == uuid.Nil {
		return Link{}, apperror.NewInvalidInput("owner id is required to generate a QR link", nil)
	}

	publicURL := g.PublicURL(ownerID)
	dim := strconv.Itoa(g.size)

	img := *g.endpoint
	q := img.Query()
	q.Set("data", publicURL)
	q.Set("size", dim+"x"+dim)
	q.Set("bgcolor", "ffffff")
	img.RawQuery = q.Encode()

	link := Link{PublicURL: publicURL, ImageURL: img.String()}

	g.mu.Lock()
	g.last = link
	g.mu.Unlock()

	return link, nil
}

// Last returns the most recently generated link.
func (g *QRGenerator) Last() Link {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.last
}
