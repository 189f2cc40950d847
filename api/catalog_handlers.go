/*
catalog_handlers.go - Catalog, credential, and notice handlers

The collaborator surface around the booking core: test/center/category
CRUD, the price matrix, agent and center-user management, credential
logins, and the home banner. Plain lookups and writes - the ledger
invariants live in the booking package, not here.
*/
package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/sebooking/booking-engine/catalog"
)

// =============================================================================
// NOTICE
// =============================================================================

// GetNotice returns the home banner; missing reads as empty/disabled.
// GET /get_notice
func (h *Handler) GetNotice(w http.ResponseWriter, r *http.Request) {
	n, err := h.Catalog.Notice(r.Context())
	if err != nil {
		writeDomainError(w, err, "Failed to get notice")
		return
	}
	writeJSON(w, http.StatusOK, NoticeDTO{Text: n.Text, Enabled: n.Enabled})
}

// UpdateNotice upserts the banner.
// POST /admin/update_notice
func (h *Handler) UpdateNotice(w http.ResponseWriter, r *http.Request) {
	var req UpdateNoticeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.Catalog.SaveNotice(r.Context(), catalog.Notice{Text: req.Text, Enabled: req.Enabled}); err != nil {
		writeDomainError(w, err, "Failed to update notice")
		return
	}
	writeJSON(w, http.StatusOK, StatusResponse{Status: "updated"})
}

// =============================================================================
// CUSTOMER-FACING CATALOG
// =============================================================================

// GetTests lists tests within a category.
// GET /get_tests?category_id=
func (h *Handler) GetTests(w http.ResponseWriter, r *http.Request) {
	categoryID, err := strconv.ParseInt(r.URL.Query().Get("category_id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "category_id must be numeric", err)
		return
	}

	tests, err := h.Catalog.TestsByCategory(r.Context(), categoryID)
	if err != nil {
		writeDomainError(w, err, "Failed to list tests")
		return
	}
	writeJSON(w, http.StatusOK, toTestDTOs(tests))
}

// GetCenters lists enabled centers offering a test, with quoted prices.
// GET /get_centers?test_id=
func (h *Handler) GetCenters(w http.ResponseWriter, r *http.Request) {
	testID, err := strconv.ParseInt(r.URL.Query().Get("test_id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "test_id must be numeric", err)
		return
	}

	offers, err := h.Catalog.OffersForTest(r.Context(), testID)
	if err != nil {
		writeDomainError(w, err, "Failed to list centers")
		return
	}

	dtos := make([]OfferDTO, 0, len(offers))
	for _, o := range offers {
		dtos = append(dtos, OfferDTO{
			CenterID:   o.CenterID,
			CenterName: o.CenterName,
			Address:    o.Address,
			Lat:        o.Lat,
			Lng:        o.Lng,
			Timings:    o.Timings,
			Price:      o.Price.Float64(),
			Enabled:    true,
		})
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// ADMIN CATALOG
// =============================================================================

// AdminTests lists all tests.
// GET /admin/tests
func (h *Handler) AdminTests(w http.ResponseWriter, r *http.Request) {
	tests, err := h.Catalog.Tests(r.Context())
	if err != nil {
		writeDomainError(w, err, "Failed to list tests")
		return
	}
	writeJSON(w, http.StatusOK, toTestDTOs(tests))
}

// AddTest creates a test; duplicate names are rejected.
// POST /admin/add_test
func (h *Handler) AddTest(w http.ResponseWriter, r *http.Request) {
	var req AddTestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.TestName == "" {
		writeError(w, http.StatusBadRequest, "test_name is required", nil)
		return
	}

	if _, err := h.Catalog.AddTest(r.Context(), req.CategoryID, req.TestName); err != nil {
		writeDomainError(w, err, "Failed to add test")
		return
	}
	writeJSON(w, http.StatusOK, StatusResponse{Status: "test added"})
}

// UpdateTest renames a test.
// POST /admin/update_test
func (h *Handler) UpdateTest(w http.ResponseWriter, r *http.Request) {
	var req UpdateTestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	id, err := strconv.ParseInt(string(req.TestID), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "test_id must be numeric", err)
		return
	}

	if err := h.Catalog.RenameTest(r.Context(), id, req.TestName); err != nil {
		writeDomainError(w, err, "Failed to update test")
		return
	}
	writeJSON(w, http.StatusOK, StatusResponse{Status: "updated"})
}

// AdminCategories lists categories.
// GET /admin/categories
func (h *Handler) AdminCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.Catalog.Categories(r.Context())
	if err != nil {
		writeDomainError(w, err, "Failed to list categories")
		return
	}

	dtos := make([]CategoryDTO, 0, len(categories))
	for _, c := range categories {
		dtos = append(dtos, CategoryDTO{ID: c.ID, Name: c.Name})
	}
	writeJSON(w, http.StatusOK, dtos)
}

// AddCategory creates a category; duplicates are rejected.
// POST /admin/add_category
func (h *Handler) AddCategory(w http.ResponseWriter, r *http.Request) {
	var req AddCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required", nil)
		return
	}

	if _, err := h.Catalog.AddCategory(r.Context(), req.Name); err != nil {
		writeDomainError(w, err, "Failed to add category")
		return
	}
	writeJSON(w, http.StatusOK, StatusResponse{Status: "category added"})
}

// AdminCenters lists all centers, enabled or not.
// GET /admin/centers
func (h *Handler) AdminCenters(w http.ResponseWriter, r *http.Request) {
	centers, err := h.Catalog.Centers(r.Context())
	if err != nil {
		writeDomainError(w, err, "Failed to list centers")
		return
	}

	dtos := make([]CenterDTO, 0, len(centers))
	for _, c := range centers {
		dtos = append(dtos, CenterDTO{
			ID:         c.ID,
			CenterName: c.Name,
			Address:    c.Address,
			Lat:        c.Lat,
			Lng:        c.Lng,
			Timings:    c.Timings,
			Enabled:    c.Enabled,
		})
	}
	writeJSON(w, http.StatusOK, dtos)
}

// AddCenter creates a center with the back-office-assigned id.
// POST /admin/add_center
func (h *Handler) AddCenter(w http.ResponseWriter, r *http.Request) {
	var req CenterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	id, err := strconv.ParseInt(string(req.ID), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "id must be numeric", err)
		return
	}

	c := catalog.Center{
		ID:      id,
		Name:    req.CenterName,
		Address: req.Address,
		Lat:     req.Lat,
		Lng:     req.Lng,
		Timings: req.Timings,
		Enabled: true,
	}
	if err := h.Catalog.AddCenter(r.Context(), c); err != nil {
		writeDomainError(w, err, "Failed to add center")
		return
	}
	writeJSON(w, http.StatusOK, StatusResponse{Status: "center added"})
}

// UpdateCenter rewrites the center's display fields.
// POST /admin/update_center
func (h *Handler) UpdateCenter(w http.ResponseWriter, r *http.Request) {
	var req CenterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	id, err := strconv.ParseInt(string(req.ID), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "id must be numeric", err)
		return
	}

	c := catalog.Center{
		ID:      id,
		Name:    req.CenterName,
		Address: req.Address,
		Lat:     req.Lat,
		Lng:     req.Lng,
		Timings: req.Timings,
	}
	if err := h.Catalog.UpdateCenter(r.Context(), c); err != nil {
		writeDomainError(w, err, "Failed to update center")
		return
	}
	writeJSON(w, http.StatusOK, StatusResponse{Status: "center updated"})
}

// ToggleCenter flips customer visibility.
// POST /admin/toggle_center
func (h *Handler) ToggleCenter(w http.ResponseWriter, r *http.Request) {
	var req ToggleCenterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	id, err := strconv.ParseInt(string(req.CenterID), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "center_id must be numeric", err)
		return
	}

	if err := h.Catalog.SetCenterEnabled(r.Context(), id, req.Enabled); err != nil {
		writeDomainError(w, err, "Failed to toggle center")
		return
	}
	writeJSON(w, http.StatusOK, StatusResponse{Status: "updated"})
}

// SetPrice upserts the (center, test) price assignment.
// POST /admin/set_price
func (h *Handler) SetPrice(w http.ResponseWriter, r *http.Request) {
	var req SetPriceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	centerID, err := strconv.ParseInt(string(req.CenterID), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "center_id must be numeric", err)
		return
	}
	testID, err := strconv.ParseInt(string(req.TestID), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "test_id must be numeric", err)
		return
	}
	if req.Price == nil {
		writeError(w, http.StatusBadRequest, "price is required", nil)
		return
	}
	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}

	if err := h.Catalog.SetPrice(r.Context(), centerID, testID, req.Price.Money(), enabled); err != nil {
		writeDomainError(w, err, "Failed to set price")
		return
	}
	writeJSON(w, http.StatusOK, StatusResponse{Status: "price updated"})
}

// AdminPricing returns the full test matrix for one center.
// GET /admin/pricing?center_id=
func (h *Handler) AdminPricing(w http.ResponseWriter, r *http.Request) {
	centerID, err := strconv.ParseInt(r.URL.Query().Get("center_id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "center_id must be numeric", err)
		return
	}

	matrix, err := h.Catalog.PricingMatrix(r.Context(), centerID)
	if err != nil {
		writeDomainError(w, err, "Failed to load pricing")
		return
	}

	dtos := make([]PricingRowDTO, 0, len(matrix))
	for _, row := range matrix {
		dto := PricingRowDTO{
			TestID:     row.TestID,
			TestName:   row.TestName,
			CategoryID: row.CategoryID,
			Price:      "",
			Enabled:    row.Enabled,
		}
		if row.Price != nil {
			dto.Price = row.Price.Float64()
		}
		dtos = append(dtos, dto)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// LOGINS
// =============================================================================

// AdminLogin is a plain credential check.
// POST /admin/login
func (h *Handler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	ok, err := h.Catalog.CheckAdmin(r.Context(), req.Username, req.Password)
	if err != nil {
		writeDomainError(w, err, "Login failed")
		return
	}
	if !ok {
		writeError(w, http.StatusUnauthorized, "Invalid credentials", nil)
		return
	}
	writeJSON(w, http.StatusOK, StatusResponse{Status: "success"})
}

// CenterLogin identifies the staff member's center.
// POST /center/login
func (h *Handler) CenterLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	user, err := h.Catalog.CenterUserByCredentials(r.Context(), req.Username, req.Password)
	if err != nil {
		writeDomainError(w, err, "Login failed")
		return
	}
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Invalid credentials", nil)
		return
	}

	resp := CenterLoginResponse{CenterID: user.CenterID}
	if c, err := h.Catalog.Center(r.Context(), user.CenterID); err == nil && c != nil {
		resp.CenterName = c.Name
	}
	writeJSON(w, http.StatusOK, resp)
}

// AgentLogin identifies the agent by credentials.
// POST /agent/login
func (h *Handler) AgentLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	agent, err := h.Catalog.AgentByCredentials(r.Context(), req.Username, req.Password)
	if err != nil {
		writeDomainError(w, err, "Login failed")
		return
	}
	if agent == nil {
		writeError(w, http.StatusUnauthorized, "Invalid credentials", nil)
		return
	}
	writeJSON(w, http.StatusOK, AgentLoginResponse{
		AgentID:   strconv.FormatInt(agent.ID, 10),
		AgentName: agent.Name,
	})
}

// =============================================================================
// AGENT & CENTER-USER MANAGEMENT
// =============================================================================

// AdminAgents lists agents with credentials omitted.
// GET /admin/agents
func (h *Handler) AdminAgents(w http.ResponseWriter, r *http.Request) {
	agents, err := h.Catalog.Agents(r.Context())
	if err != nil {
		writeDomainError(w, err, "Failed to list agents")
		return
	}

	dtos := make([]AgentDTO, 0, len(agents))
	for _, a := range agents {
		dtos = append(dtos, AgentDTO{
			ID:        a.ID,
			Name:      a.Name,
			Username:  a.Username,
			CreatedAt: a.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, dtos)
}

// AddAgent creates an agent; duplicate usernames are rejected.
// POST /admin/add_agent
func (h *Handler) AddAgent(w http.ResponseWriter, r *http.Request) {
	var req AgentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Username == "" || req.Name == "" {
		writeError(w, http.StatusBadRequest, "name and username are required", nil)
		return
	}

	if _, err := h.Catalog.AddAgent(r.Context(), req.Name, req.Username, req.Password); err != nil {
		writeDomainError(w, err, "Failed to add agent")
		return
	}
	writeJSON(w, http.StatusOK, StatusResponse{Status: "agent added"})
}

// UpdateAgent rewrites an agent's record.
// POST /admin/update_agent
func (h *Handler) UpdateAgent(w http.ResponseWriter, r *http.Request) {
	var req AgentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	id, err := strconv.ParseInt(string(req.ID), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "id must be numeric", err)
		return
	}

	if err := h.Catalog.UpdateAgent(r.Context(), id, req.Name, req.Username, req.Password); err != nil {
		writeDomainError(w, err, "Failed to update agent")
		return
	}
	writeJSON(w, http.StatusOK, StatusResponse{Status: "agent updated"})
}

// AdminCenterUsers lists center-staff credentials.
// GET /admin/center_users
func (h *Handler) AdminCenterUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Catalog.CenterUsers(r.Context())
	if err != nil {
		writeDomainError(w, err, "Failed to list center users")
		return
	}

	dtos := make([]CenterUserDTO, 0, len(users))
	for _, u := range users {
		dtos = append(dtos, CenterUserDTO{
			CenterID: u.CenterID,
			Username: u.Username,
			Password: u.Password,
		})
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateCenterUser adds a staff credential for a center.
// POST /admin/create_center_user
func (h *Handler) CreateCenterUser(w http.ResponseWriter, r *http.Request) {
	var req CenterUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	centerID, err := strconv.ParseInt(string(req.CenterID), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "center_id must be numeric", err)
		return
	}

	u := catalog.CenterUser{CenterID: centerID, Username: req.Username, Password: req.Password}
	if err := h.Catalog.CreateCenterUser(r.Context(), u); err != nil {
		writeDomainError(w, err, "Failed to create center user")
		return
	}
	writeJSON(w, http.StatusOK, StatusResponse{Status: "center user created"})
}

// UpdateCenterUser rewrites a center's staff credential.
// POST /admin/update_center_user
func (h *Handler) UpdateCenterUser(w http.ResponseWriter, r *http.Request) {
	var req CenterUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	centerID, err := strconv.ParseInt(string(req.CenterID), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "center_id must be numeric", err)
		return
	}

	u := catalog.CenterUser{CenterID: centerID, Username: req.Username, Password: req.Password}
	if err := h.Catalog.UpdateCenterUser(r.Context(), u); err != nil {
		writeDomainError(w, err, "Failed to update center user")
		return
	}
	writeJSON(w, http.StatusOK, StatusResponse{Status: "center user updated"})
}

// =============================================================================
// HELPERS
// =============================================================================

func toTestDTOs(tests []catalog.Test) []TestDTO {
	dtos := make([]TestDTO, 0, len(tests))
	for _, t := range tests {
		dtos = append(dtos, TestDTO{ID: t.ID, CategoryID: t.CategoryID, TestName: t.Name})
	}
	return dtos
}
