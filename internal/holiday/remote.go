package holiday

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/neexbeast/clima-rs/internal/apperr"
	"github.com/neexbeast/clima-rs/internal/upstream"
)

const feriadosDefaultURL = "https://feriadosapi.com/api/v1"

// RemoteClient fetches holidays by IBGE municipality code from Feriados API.
type RemoteClient struct {
	apiKey  string
	baseURL string
	client  *upstream.Client
}

// NewRemoteClient constructs a RemoteClient. An empty baseURL selects the
// production endpoint.
func NewRemoteClient(baseURL, apiKey string, timeout time.Duration) *RemoteClient {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = feriadosDefaultURL
	}
	return &RemoteClient{
		apiKey:  strings.TrimSpace(apiKey),
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  upstream.New("feriados", timeout),
	}
}

// Enabled reports whether a credential is configured.
func (c *RemoteClient) Enabled() bool {
	return c != nil && c.apiKey != ""
}

type feriadosResponse struct {
	Cidade struct {
		IBGE int    `json:"ibge"`
		Nome string `json:"nome"`
		UF   string `json:"uf"`
	} `json:"cidade"`
	Feriados []struct {
		Data string `json:"data"`
		Nome string `json:"nome"`
		Tipo string `json:"tipo"`
	} `json:"feriados"`
}

// Fetch retrieves the holidays of one municipality for year.
// Optional ("facultativo") days are reported as national.
func (c *RemoteClient) Fetch(ctx context.Context, ibge, cityName string, year int) ([]Holiday, error) {
	if !c.Enabled() {
		return nil, apperr.ConfigurationMissing("feriados fetch", "FERIADOS_API_KEY")
	}

	endpoint := fmt.Sprintf("%s/feriados/cidade/%s?ano=%d", c.baseURL, url.PathEscape(ibge), year)
	header := http.Header{}
	header.Set("Authorization", "Bearer "+c.apiKey)
	header.Set("Accept", "application/json")

	var raw feriadosResponse
	if err := c.client.GetJSON(ctx, endpoint, header, &raw); err != nil {
		return nil, fmt.Errorf("feriados fetch for %s: %w", ibge, err)
	}

	name := strings.TrimSpace(cityName)
	list := make([]Holiday, 0, len(raw.Feriados))
	for _, f := range raw.Feriados {
		d, err := parseRemoteDate(f.Data)
		if err != nil {
			return nil, apperr.New(apperr.KindUpstreamError, "feriados fetch for "+ibge, err)
		}
		h := Holiday{Date: d, Title: f.Nome}
		switch strings.ToUpper(f.Tipo) {
		case "ESTADUAL":
			h.Kind = State
		case "MUNICIPAL":
			h.Kind = Municipal
			h.City = name
		default:
			h.Kind = National
		}
		list = append(list, h)
	}

	return Finalize(list), nil
}

// parseRemoteDate accepts "DD/MM/YYYY" and ignores the year.
func parseRemoteDate(s string) (Date, error) {
	parts := strings.Split(strings.TrimSpace(s), "/")
	if len(parts) != 3 {
		return Date{}, fmt.Errorf("date %q: want DD/MM/YYYY", s)
	}
	if _, err := strconv.Atoi(parts[2]); err != nil {
		return Date{}, fmt.Errorf("date %q: bad year: %w", s, err)
	}
	return ParseDate(parts[0] + "/" + parts[1])
}
