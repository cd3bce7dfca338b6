// Package azure covers the two cloud boundary calls the bootstrap makes: the
// instance-metadata endpoint for the region and the authenticated CLI for the
// active profile. Login is assumed done out-of-band.
package azure

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	booterrors "github.com/pipeboot/pipeboot/internal/errors"
	"github.com/pipeboot/pipeboot/internal/system"
)

const accountShowCmd = "az account show --query name --output tsv"

// Metadata queries the instance-metadata service and the az CLI.
type Metadata struct {
	Endpoint string
	Client   *http.Client
	Sys      system.State
}

// New returns a Metadata against the given IMDS endpoint.
func New(endpoint string, sys system.State) *Metadata {
	return &Metadata{
		Endpoint: endpoint,
		Client:   &http.Client{Timeout: 5 * time.Second},
		Sys:      sys,
	}
}

// Region asks the instance-metadata endpoint for the VM's location.
func (m *Metadata) Region() (string, error) {
	req, err := http.NewRequest(http.MethodGet, m.Endpoint, nil)
	if err != nil {
		return "", captureErr("building metadata request: " + err.Error())
	}
	// IMDS rejects requests without this header.
	req.Header.Set("Metadata", "true")

	resp, err := m.Client.Do(req)
	if err != nil {
		return "", captureErr("querying instance metadata: " + err.Error())
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", captureErr(fmt.Sprintf("instance metadata returned status %d", resp.StatusCode))
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", captureErr("reading metadata response: " + err.Error())
	}
	region := strings.TrimSpace(string(body))
	if region == "" {
		return "", captureErr("instance metadata returned an empty region")
	}
	return region, nil
}

// Profile asks the az CLI for the active account name.
func (m *Metadata) Profile() (string, error) {
	if !m.Sys.CommandExists("az") {
		return "", captureErr("az CLI not found on PATH")
	}
	out, err := m.Sys.Output(accountShowCmd)
	if err != nil {
		return "", captureErr("az account show failed: " + err.Error())
	}
	if out == "" {
		return "", captureErr("az account show returned an empty profile")
	}
	return out, nil
}

func captureErr(msg string) *booterrors.RunError {
	return &booterrors.RunError{
		Type:    booterrors.CaptureFailed,
		Message: msg,
		Hint:    "Run 'az login' and re-run the bootstrap",
	}
}
