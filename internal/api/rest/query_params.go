package rest

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/feral-file/ff-vault/internal/api/shared/constants"
	"github.com/feral-file/ff-vault/internal/domain"
)

// GetHolderQueryParams holds query parameters for GET /vaults/:collection/holders/:holder
type GetHolderQueryParams struct {
	Limit  int `form:"limit,default=20"`
	Offset int `form:"offset,default=0"`
}

// ParseGetHolderQuery parses query parameters for GET /vaults/:collection/holders/:holder
func ParseGetHolderQuery(c *gin.Context) (*GetHolderQueryParams, error) {
	var params GetHolderQueryParams
	if err := c.ShouldBindQuery(&params); err != nil {
		return nil, err
	}

	if params.Limit < 0 || params.Offset < 0 {
		return nil, fmt.Errorf("limit and offset must not be negative")
	}

	// Cap limit
	if params.Limit > constants.MAX_PAGE_SIZE {
		params.Limit = constants.MAX_PAGE_SIZE
	}

	return &params, nil
}

// ListEventsQueryParams holds query parameters for GET /vaults/:collection/events
type ListEventsQueryParams struct {
	// Filters
	Types []string `form:"type"`

	// Pagination
	Limit  int `form:"limit,default=20"`
	Offset int `form:"offset,default=0"`
}

// ParseListEventsQuery parses query parameters for GET /vaults/:collection/events
func ParseListEventsQuery(c *gin.Context) (*ListEventsQueryParams, error) {
	var params ListEventsQueryParams
	if err := c.ShouldBindQuery(&params); err != nil {
		return nil, err
	}

	if params.Limit < 0 || params.Offset < 0 {
		return nil, fmt.Errorf("limit and offset must not be negative")
	}

	// Cap limit
	if params.Limit > constants.MAX_PAGE_SIZE {
		params.Limit = constants.MAX_PAGE_SIZE
	}

	// Split comma separated values
	var types []string
	for _, t := range params.Types {
		for _, item := range strings.Split(t, ",") {
			if item = strings.TrimSpace(item); item != "" {
				types = append(types, item)
			}
		}
	}
	params.Types = types

	for _, t := range params.Types {
		if !domain.IsValidEventType(domain.EventType(t)) {
			return nil, fmt.Errorf("invalid event type: %s", t)
		}
	}

	return &params, nil
}

// EventTypes returns the requested event types
func (p *ListEventsQueryParams) EventTypes() []domain.EventType {
	types := make([]domain.EventType, 0, len(p.Types))
	for _, t := range p.Types {
		types = append(types, domain.EventType(t))
	}
	return types
}
