package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"

	"github.com/orcadental/practice-api/internal/model"
	"github.com/orcadental/practice-api/internal/repository"
)

const ContextClinicSettings = "clinic_settings"

// TenantSettings resolves per-clinic settings once per request, with a short
// in-process cache in front of the database.
type TenantSettings struct {
	clinicRepo repository.ClinicRepository
	cache      *cache.Cache
}

func NewTenantSettings(clinicRepo repository.ClinicRepository) *TenantSettings {
	return &TenantSettings{
		clinicRepo: clinicRepo,
		cache:      cache.New(5*time.Minute, 10*time.Minute),
	}
}

func (t *TenantSettings) Resolve() gin.HandlerFunc {
	return func(c *gin.Context) {
		clinicID := ClinicID(c)

		if cached, ok := t.cache.Get(clinicID.String()); ok {
			c.Set(ContextClinicSettings, cached.(*model.ClinicSettings))
			c.Next()
			return
		}

		settings, err := t.clinicRepo.GetSettings(c.Request.Context(), clinicID)
		if err != nil {
			// Missing settings fall back to defaults downstream.
			c.Next()
			return
		}

		t.cache.Set(clinicID.String(), settings, cache.DefaultExpiration)
		c.Set(ContextClinicSettings, settings)
		c.Next()
	}
}

// ClinicSettings returns the settings resolved for this request, or nil.
func ClinicSettings(c *gin.Context) *model.ClinicSettings {
	if v, ok := c.Get(ContextClinicSettings); ok {
		if s, ok := v.(*model.ClinicSettings); ok {
			return s
		}
	}
	return nil
}
