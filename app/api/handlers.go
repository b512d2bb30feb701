package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ratewatch/rate-watch/app/database"
	"github.com/ratewatch/rate-watch/app/rates"
	"github.com/ratewatch/rate-watch/app/tasks"
)

func NewHandler(offerRepo database.OfferRepository, configRepo database.ConfigRepository,
	sourceCache *rates.SourceCache, scheduler tasks.TaskSchedulerInterface) *Handler {
	return &Handler{
		offerRepo:   offerRepo,
		configRepo:  configRepo,
		sourceCache: sourceCache,
		scheduler:   scheduler,
	}
}

func (h *Handler) GetOffers(c *gin.Context) {
	var offers []database.Offer
	var err error

	if utilityType := c.Query("type"); utilityType != "" {
		if !validType(utilityType) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid utility type"})
			return
		}
		offers, err = h.offerRepo.GetByType(utilityType)
	} else {
		offers, err = h.offerRepo.GetAll()
	}

	if err != nil {
		slog.Error("Database error", "operation", "get_offers", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"offers": offerList(offers),
		"total":  len(offers),
	})
}

func (h *Handler) GetBestOffer(c *gin.Context) {
	utilityType := c.Query("type")
	if !validType(utilityType) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing or invalid type parameter (gas|electric)"})
		return
	}

	best, err := h.offerRepo.FindBest(utilityType, time.Now().UTC())
	if err != nil {
		slog.Error("Database error", "operation", "find_best", "type", utilityType, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	if best == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No live offers for type", "type": utilityType})
		return
	}

	c.JSON(http.StatusOK, offerJSON(*best))
}

func (h *Handler) CreateOffer(c *gin.Context) {
	var req CreateOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	if !validType(req.Type) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid utility type"})
		return
	}

	termMonths := req.RateLength
	if termMonths < 1 {
		termMonths = 1
	}

	stored, err := h.offerRepo.Add(rates.Offer{
		Provider:   req.Provider,
		Type:       rates.UtilityType(req.Type),
		Price:      req.Rate,
		TermMonths: termMonths,
		URL:        req.URL,
	})
	if err != nil {
		slog.Error("Database error", "operation", "add_offer", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusCreated, offerJSON(*stored))
}

func (h *Handler) DeleteOffer(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid offer id"})
		return
	}

	if err := h.offerRepo.Remove(id); err != nil {
		slog.Error("Database error", "operation", "remove_offer", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) GetConfigs(c *gin.Context) {
	if utilityType := c.Query("type"); utilityType != "" {
		if !validType(utilityType) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid utility type"})
			return
		}

		config, err := h.configRepo.FindCurrent(utilityType)
		if err != nil {
			slog.Error("Database error", "operation", "find_current", "type", utilityType, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
			return
		}
		if config == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "No configuration for type", "type": utilityType})
			return
		}

		c.JSON(http.StatusOK, configJSON(*config))
		return
	}

	configs, err := h.configRepo.GetAll()
	if err != nil {
		slog.Error("Database error", "operation", "get_configs", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	list := make([]map[string]interface{}, 0, len(configs))
	for _, config := range configs {
		list = append(list, configJSON(config))
	}

	c.JSON(http.StatusOK, gin.H{
		"configs": list,
		"total":   len(list),
	})
}

func (h *Handler) CreateConfig(c *gin.Context) {
	var req CreateConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	if !validType(req.Type) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid utility type"})
		return
	}

	stored, err := h.configRepo.Add(database.CurrentConfig{
		Name:       req.Name,
		Type:       req.Type,
		Rate:       req.Rate,
		ValidUntil: req.ValidUntil,
		Fields:     req.Fields,
	})
	if err != nil {
		slog.Error("Database error", "operation", "add_config", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusCreated, configJSON(*stored))
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
	}

	if offerCount, err := h.offerRepo.GetCount(); err == nil {
		health["offers"] = offerCount
	}

	health["loaded_sources"] = h.sourceCache.GetConfigCount()

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetStats(c *gin.Context) {
	stats := map[string]interface{}{}

	if offerCount, err := h.offerRepo.GetCount(); err == nil {
		stats["offers"] = offerCount
	}

	sources := make([]map[string]interface{}, 0)
	for name, source := range h.sourceCache.GetConfigs() {
		sources = append(sources, map[string]interface{}{
			"name":    name,
			"type":    string(source.Type),
			"mode":    source.Mode,
			"enabled": source.Settings.Enabled,
			"top_n":   source.Settings.TopN,
		})
	}
	stats["sources"] = sources

	for _, utilityType := range rates.Types() {
		if best, err := h.offerRepo.FindBest(string(utilityType), time.Now().UTC()); err == nil && best != nil {
			stats["best_"+string(utilityType)] = offerJSON(*best)
		}
	}

	c.JSON(http.StatusOK, stats)
}

func (h *Handler) APITriggerRun(c *gin.Context) {
	if err := h.scheduler.EnqueueRun(); err != nil {
		slog.Error("Error enqueueing pipeline run", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to enqueue pipeline run",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"success": true,
		"message": "Pipeline run enqueued",
	})
}

func validType(utilityType string) bool {
	switch rates.UtilityType(utilityType) {
	case rates.Gas, rates.Electric:
		return true
	}
	return false
}

func offerJSON(offer database.Offer) map[string]interface{} {
	return map[string]interface{}{
		"id":          offer.ID,
		"provider":    offer.Provider,
		"type":        offer.Type,
		"rate":        offer.Rate,
		"rate_length": offer.RateLength,
		"url":         offer.URL,
		"created_at":  offer.CreatedAt,
	}
}

func offerList(offers []database.Offer) []map[string]interface{} {
	list := make([]map[string]interface{}, 0, len(offers))
	for _, offer := range offers {
		list = append(list, offerJSON(offer))
	}
	return list
}

func configJSON(config database.CurrentConfig) map[string]interface{} {
	return map[string]interface{}{
		"id":          config.ID,
		"name":        config.Name,
		"type":        config.Type,
		"rate":        config.Rate,
		"valid_until": config.ValidUntil,
		"fields":      config.Fields,
		"created_at":  config.CreatedAt,
	}
}
