package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mmtukut/propabridge-2/internal/config"
	"github.com/mmtukut/propabridge-2/internal/models"
	"github.com/mmtukut/propabridge-2/internal/services"
)

// RestSearchHandler handles REST search requests.
type RestSearchHandler struct {
	searchService services.ISearchService
	cfg           *config.Config
}

// NewRestSearchHandler creates a new RestSearchHandler.
func NewRestSearchHandler(searchService services.ISearchService, cfg *config.Config) *RestSearchHandler {
	return &RestSearchHandler{
		searchService: searchService,
		cfg:           cfg,
	}
}

// SearchListings handles GET /v1/listing/search. Accepts either a free-text
// query (?q=) or structured criteria parameters; free text wins when both are
// present.
func (h *RestSearchHandler) SearchListings(c *gin.Context) {
	limit := h.cfg.DefaultSearchLimit
	if limitStr := c.Query("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err == nil && parsed > 0 && parsed <= 200 {
			limit = parsed
		}
	}

	ctx := c.Request.Context()

	if q := strings.TrimSpace(c.Query("q")); q != "" {
		result, err := h.searchService.SearchText(ctx, q, nil, limit)
		if err != nil {
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to search listings"})
			return
		}
		c.JSON(http.StatusOK, result)
		return
	}

	criteria := models.SearchCriteria{
		Location:     strings.TrimSpace(c.Query("location")),
		PropertyType: strings.TrimSpace(c.Query("type")),
	}

	if v := c.Query("min_price"); v != "" {
		price, err := strconv.ParseFloat(v, 64)
		if err != nil || price < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid min_price"})
			return
		}
		criteria.MinPrice = &price
	}
	if v := c.Query("max_price"); v != "" {
		price, err := strconv.ParseFloat(v, 64)
		if err != nil || price < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid max_price"})
			return
		}
		criteria.MaxPrice = &price
	}
	if criteria.MinPrice != nil && criteria.MaxPrice != nil && *criteria.MinPrice > *criteria.MaxPrice {
		c.JSON(http.StatusBadRequest, gin.H{"error": "min_price cannot exceed max_price"})
		return
	}
	if v := c.Query("bedrooms"); v != "" {
		bedrooms, err := strconv.Atoi(v)
		if err != nil || bedrooms < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid bedrooms"})
			return
		}
		criteria.Bedrooms = &bedrooms
	}
	if v := c.Query("amenities"); v != "" {
		for _, a := range strings.Split(v, ",") {
			if trimmed := strings.TrimSpace(a); trimmed != "" {
				criteria.Amenities = append(criteria.Amenities, trimmed)
			}
		}
	}

	result, err := h.searchService.Search(ctx, criteria, limit)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to search listings"})
		return
	}

	c.JSON(http.StatusOK, result)
}
