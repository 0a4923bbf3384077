// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

// Package armtest is an in-memory Azure Resource Manager emulator for tests.
// It understands the create-or-update, read, instance view and resource group
// delete calls a deployment makes, and records every request it serves.
package armtest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
)

// DefaultPublicIPAddress is the address assigned to every public IP unless changed with SetPublicIPAddress.
const DefaultPublicIPAddress = "203.0.113.10"

const (
	succeeded        = "Succeeded"
	instanceViewPath = "/instanceview"
)

// Call is one request served by the emulator.
type Call struct {
	Method string
	Path   string
}

// PutHook may change a stored resource body before it is returned to the client.
type PutHook func(id string, body map[string]any)

type failure struct {
	method  string
	segment string
	status  int
	code    string
}

// Server is the emulator. Do not create this directly, use New instead.
type Server struct {
	srv *httptest.Server

	mu        sync.Mutex
	resources map[string]map[string]any
	calls     []Call
	failures  []failure
	publicIP  string
	putHook   PutHook
}

// New starts an emulator that is closed when the test ends.
func New(t testing.TB) *Server {
	t.Helper()

	s := &Server{
		resources: make(map[string]map[string]any),
		publicIP:  DefaultPublicIPAddress,
	}
	s.srv = httptest.NewServer(http.HandlerFunc(s.serveHTTP))
	t.Cleanup(s.srv.Close)

	return s
}

// URL is the Resource Manager endpoint of the emulator.
func (s *Server) URL() string {
	return s.srv.URL
}

// Fail makes every request with method whose path contains the resourceType segment
// (for example "networkSecurityGroups") fail with status and the ARM error code.
func (s *Server) Fail(method, resourceType string, status int, code string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.failures = append(s.failures, failure{
		method:  method,
		segment: "/" + strings.ToLower(resourceType) + "/",
		status:  status,
		code:    code,
	})
}

// SetPublicIPAddress sets the address given to public IPs created from now on. Empty leaves them unallocated.
func (s *Server) SetPublicIPAddress(ip string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.publicIP = ip
}

// OnPut installs a hook run on every stored body of a PUT.
func (s *Server) OnPut(h PutHook) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.putHook = h
}

// Calls returns the requests served so far, in order.
func (s *Server) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]Call(nil), s.calls...)
}

// Resource returns the stored body of the resource with the given ID.
func (s *Server) Resource(id string) (map[string]any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	body, ok := s.resources[key(id)]

	return body, ok
}

// ResourceIDs returns the IDs of every stored resource, sorted.
func (s *Server) ResourceIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, len(s.resources))
	for _, body := range s.resources {
		if id, ok := body["id"].(string); ok {
			ids = append(ids, id)
		}
	}

	sort.Strings(ids)

	return ids
}

func (s *Server) serveHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls = append(s.calls, Call{Method: r.Method, Path: r.URL.Path})

	if !strings.HasPrefix(r.Header.Get("Authorization"), "Bearer ") {
		writeError(w, http.StatusUnauthorized, "AuthenticationFailed", "missing bearer token")
		return
	}

	path := canonicalPath(r.URL.Path)
	lower := strings.ToLower(path)

	for _, f := range s.failures {
		if f.method == r.Method && strings.Contains(lower+"/", f.segment) {
			writeError(w, f.status, f.code, "injected failure for "+path)
			return
		}
	}

	switch r.Method {
	case http.MethodPut:
		s.put(w, r, path)
	case http.MethodGet:
		s.get(w, path)
	case http.MethodHead:
		if _, ok := s.resources[key(path)]; ok {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		w.WriteHeader(http.StatusNotFound)
	case http.MethodDelete:
		s.delete(w, path)
	default:
		writeError(w, http.StatusMethodNotAllowed, "MethodNotAllowed", r.Method+" is not supported")
	}
}

func (s *Server) put(w http.ResponseWriter, r *http.Request, id string) {
	body := make(map[string]any)
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "InvalidRequestContent", err.Error())
		return
	}

	if !isResourceGroup(id) {
		if _, ok := s.resources[key(resourceGroupOf(id))]; !ok {
			writeError(w, http.StatusNotFound, "ResourceGroupNotFound",
				fmt.Sprintf("Resource group '%s' could not be found.", nameOf(resourceGroupOf(id))))
			return
		}
	}

	body["id"] = id
	body["name"] = nameOf(id)

	props, _ := body["properties"].(map[string]any)
	if props == nil {
		props = make(map[string]any)
		body["properties"] = props
	}

	props["provisioningState"] = succeeded

	switch {
	case strings.Contains(strings.ToLower(id), "/virtualnetworks/"):
		setSubnetIDs(id, props)
	case strings.Contains(strings.ToLower(id), "/publicipaddresses/") && s.publicIP != "":
		props["ipAddress"] = s.publicIP
	}

	if s.putHook != nil {
		s.putHook(id, body)
	}

	status := http.StatusCreated
	if _, exists := s.resources[key(id)]; exists {
		status = http.StatusOK
	}

	s.resources[key(id)] = body
	writeJSON(w, status, body)
}

func setSubnetIDs(vnetID string, props map[string]any) {
	subnets, _ := props["subnets"].([]any)
	for _, sn := range subnets {
		subnet, ok := sn.(map[string]any)
		if !ok {
			continue
		}

		name, _ := subnet["name"].(string)
		subnet["id"] = vnetID + "/subnets/" + name

		sp, _ := subnet["properties"].(map[string]any)
		if sp == nil {
			sp = make(map[string]any)
			subnet["properties"] = sp
		}

		sp["provisioningState"] = succeeded
	}
}

func (s *Server) get(w http.ResponseWriter, path string) {
	if strings.HasSuffix(strings.ToLower(path), instanceViewPath) {
		vmID := path[:len(path)-len(instanceViewPath)]
		if _, ok := s.resources[key(vmID)]; !ok {
			writeNotFound(w, vmID)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"computerName": nameOf(vmID),
			"statuses": []any{
				map[string]any{"code": "ProvisioningState/succeeded", "level": "Info"},
				map[string]any{"code": "PowerState/running", "level": "Info"},
			},
		})

		return
	}

	body, ok := s.resources[key(path)]
	if !ok {
		writeNotFound(w, path)
		return
	}

	writeJSON(w, http.StatusOK, body)
}

func (s *Server) delete(w http.ResponseWriter, path string) {
	if _, ok := s.resources[key(path)]; !ok {
		writeNotFound(w, path)
		return
	}

	prefix := key(path)
	for k := range s.resources {
		if k == prefix || strings.HasPrefix(k, prefix+"/") {
			delete(s.resources, k)
		}
	}

	w.WriteHeader(http.StatusOK)
}

func writeNotFound(w http.ResponseWriter, id string) {
	code := "ResourceNotFound"
	if isResourceGroup(id) {
		code = "ResourceGroupNotFound"
	}

	writeError(w, http.StatusNotFound, code, fmt.Sprintf("The resource '%s' was not found.", id))
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("x-ms-error-code", code)
	writeJSON(w, status, map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// canonicalPath fixes the casing of the resource group segment, which SDK clients do not agree on.
func canonicalPath(p string) string {
	p = strings.TrimSuffix(p, "/")

	const seg = "/resourcegroups/"
	if i := strings.Index(strings.ToLower(p), seg); i >= 0 {
		p = p[:i] + "/resourceGroups/" + p[i+len(seg):]
	}

	return p
}

func key(id string) string {
	return strings.ToLower(canonicalPath(id))
}

func nameOf(id string) string {
	return id[strings.LastIndex(id, "/")+1:]
}

// resourceGroupOf returns the resource group ID of a resource ID.
func resourceGroupOf(id string) string {
	parts := strings.Split(canonicalPath(id), "/")
	if len(parts) < 5 {
		return id
	}

	return strings.Join(parts[:5], "/")
}

func isResourceGroup(id string) bool {
	parts := strings.Split(canonicalPath(id), "/")

	return len(parts) == 5 && strings.EqualFold(parts[3], "resourceGroups")
}
