package admin

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"Glupulse_MealPlan/internal/geminiservice"
	"Glupulse_MealPlan/internal/mealsafety"
	"Glupulse_MealPlan/internal/utility"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"
)

var StartTime = time.Now()

// Handler serves operator endpoints: host stats and the guideline document library.
type Handler struct {
	references *geminiservice.ReferenceLibrary
	uploader   geminiservice.Uploader
	sources    []geminiservice.ReferenceSource
	admins     map[string]bool
}

// NewHandler builds the admin handler. adminIDs is a comma-separated list of user ids.
func NewHandler(references *geminiservice.ReferenceLibrary, uploader geminiservice.Uploader, sources []geminiservice.ReferenceSource, adminIDs string) *Handler {
	admins := make(map[string]bool)
	for _, id := range strings.Split(adminIDs, ",") {
		if id = strings.TrimSpace(id); id != "" {
			admins[id] = true
		}
	}
	return &Handler{references: references, uploader: uploader, sources: sources, admins: admins}
}

// RequireAdmin must run after the JWT middleware.
func (h *Handler) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID, err := utility.GetUserIDFromContext(c)
		if err != nil || !h.admins[userID] {
			log.Warn().Str("user_id", userID).Str("ip", utility.GetRealIP(c)).Msg("Admin access denied")
			return c.JSON(http.StatusForbidden, map[string]string{"error": "Admin access required"})
		}
		return next(c)
	}
}

/* ====================================================================
                   		Server Health
==================================================================== */

// GetServerHealthHandler collects and returns system-level metrics
func (h *Handler) GetServerHealthHandler(c echo.Context) error {
	// 1. Memory Stats
	v, err := mem.VirtualMemory()
	if err != nil {
		log.Error().Err(err).Msg("Failed to read memory stats")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to read system stats"})
	}

	// 2. CPU Usage (since the previous call)
	var cpuUsage string
	if cpuPercent, err := cpu.Percent(0, false); err == nil && len(cpuPercent) > 0 {
		cpuUsage = fmt.Sprintf("%.2f%%", cpuPercent[0])
	}

	// 3. Disk Stats (Root partition)
	diskStats := map[string]interface{}{}
	if d, err := disk.Usage("/"); err == nil {
		diskStats["total_gb"] = fmt.Sprintf("%.2f GB", float64(d.Total)/1024/1024/1024)
		diskStats["used_gb"] = fmt.Sprintf("%.2f GB", float64(d.Used)/1024/1024/1024)
		diskStats["used_percent"] = fmt.Sprintf("%.2f%%", d.UsedPercent)
	}

	// 4. Host/Runtime Info
	runtime := map[string]interface{}{
		"uptime":     time.Since(StartTime).String(),
		"start_time": StartTime.Format(time.RFC3339),
	}
	if hInfo, err := host.Info(); err == nil {
		runtime["os"] = hInfo.OS
		runtime["platform"] = hInfo.Platform
		runtime["arch"] = hInfo.KernelArch
		runtime["hostname"] = hInfo.Hostname
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":  "online",
		"runtime": runtime,
		"cpu": map[string]interface{}{
			"usage_percent": cpuUsage,
		},
		"memory": map[string]interface{}{
			"total_gb":     fmt.Sprintf("%.2f GB", float64(v.Total)/1024/1024/1024),
			"used_gb":      fmt.Sprintf("%.2f GB", float64(v.Used)/1024/1024/1024),
			"used_percent": fmt.Sprintf("%.2f%%", v.UsedPercent),
			"free_gb":      fmt.Sprintf("%.2f GB", float64(v.Free)/1024/1024/1024),
		},
		"disk": diskStats,
	})
}

/* ====================================================================
                   		Reference Documents
==================================================================== */

// GetReferencesHandler reports which guideline documents are attached per diet type.
func (h *Handler) GetReferencesHandler(c echo.Context) error {
	diets := []mealsafety.DietType{
		mealsafety.DietVegan,
		mealsafety.DietVegetarian,
		mealsafety.DietMeatBased,
		mealsafety.DietAllInclusive,
	}

	attached := make(map[string][]geminiservice.ReferenceDocument, len(diets))
	for _, d := range diets {
		docs := h.references.ForDiet(d)
		if docs == nil {
			docs = []geminiservice.ReferenceDocument{}
		}
		attached[string(d)] = docs
	}

	resp := map[string]interface{}{
		"loaded":    h.references != nil && h.references.Loaded(),
		"documents": attached,
	}
	if h.references != nil && h.references.Loaded() {
		resp["loaded_at"] = h.references.LoadedAt().Format(time.RFC3339)
	}
	return c.JSON(http.StatusOK, resp)
}

// ReloadReferencesHandler re-uploads every configured document. On failure the
// previous documents stay in place.
func (h *Handler) ReloadReferencesHandler(c echo.Context) error {
	if h.references == nil || h.uploader == nil || len(h.sources) == 0 {
		return c.JSON(http.StatusConflict, map[string]string{"error": "No reference documents configured"})
	}

	if err := h.references.Reload(c.Request().Context(), h.uploader, h.sources); err != nil {
		log.Error().Err(err).Msg("Failed to reload reference documents")
		return c.JSON(http.StatusBadGateway, map[string]string{"error": "Failed to reload reference documents"})
	}

	log.Info().Int("documents", len(h.sources)).Msg("Reference documents reloaded")
	return c.JSON(http.StatusOK, map[string]string{
		"message":   "Reference documents reloaded",
		"loaded_at": h.references.LoadedAt().Format(time.RFC3339),
	})
}
