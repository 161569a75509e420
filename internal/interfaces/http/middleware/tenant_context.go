package middleware

import (
	"context"
	"net"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/elevate-edu/elevate/internal/domain/models"
	"github.com/elevate-edu/elevate/internal/domain/repository"
	"github.com/elevate-edu/elevate/pkg/constants"
	"github.com/elevate-edu/elevate/pkg/errors"
	"github.com/elevate-edu/elevate/pkg/logger"
)

// GinKeyTenant and GinKeyTenantID expose the resolved tenant to handlers.
const (
	GinKeyTenant   = "tenant"
	GinKeyTenantID = "tenant_id"
)

// TenantResolver resolves the tenant for each request. Resolution order:
// subdomain of the base domain, then the full host as a custom domain, then
// the X-Tenant-ID header, then the tenant query parameter. Requests for
// suspended tenants are rejected.
type TenantResolver struct {
	orgs       repository.OrganizationRepository
	baseDomain string
	log        logger.Logger
}

// NewTenantResolver creates the tenant resolution middleware.
func NewTenantResolver(orgs repository.OrganizationRepository, baseDomain string, log logger.Logger) *TenantResolver {
	return &TenantResolver{
		orgs:       orgs,
		baseDomain: baseDomain,
		log:        log.WithComponent("tenant_resolver"),
	}
}

// Handler resolves the tenant and aborts with 400 when resolution fails.
func (r *TenantResolver) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		org, err := r.resolve(c)
		if err != nil {
			abortWithError(c, err)
			return
		}
		if !org.IsActive {
			abortWithError(c, errors.ErrForbidden("organization is suspended"))
			return
		}

		c.Set(GinKeyTenant, org)
		c.Set(GinKeyTenantID, org.ID)
		c.Header(constants.HeaderTenantID, org.ID)

		ctx := context.WithValue(c.Request.Context(), constants.ContextKeyTenantID, org.ID)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func (r *TenantResolver) resolve(c *gin.Context) (*models.Organization, error) {
	ctx := c.Request.Context()

	if slug := r.subdomain(c.Request.Host); slug != "" {
		org, err := r.orgs.GetBySlug(ctx, slug)
		if err == nil {
			return org, nil
		}
		if !errors.IsNotFound(err) {
			return nil, err
		}
	}

	// Hosts outside the base domain may be a tenant's custom domain.
	if org, err := r.orgs.GetByDomain(ctx, hostOnly(c.Request.Host)); err == nil {
		return org, nil
	}

	if id := c.GetHeader(constants.HeaderTenantID); id != "" {
		return r.orgs.GetByID(ctx, id)
	}

	if slug := c.Query("tenant"); slug != "" {
		return r.orgs.GetBySlug(ctx, slug)
	}

	return nil, errors.ErrTenantNotResolved()
}

// subdomain extracts the tenant slug from host when host is a subdomain of
// the configured base domain. Reserved subdomains resolve to nothing.
func (r *TenantResolver) subdomain(host string) string {
	host = hostOnly(host)
	suffix := "." + r.baseDomain
	if !strings.HasSuffix(host, suffix) {
		return ""
	}
	slug := strings.TrimSuffix(host, suffix)
	if slug == "" || strings.Contains(slug, ".") || constants.ReservedSubdomains[slug] {
		return ""
	}
	return slug
}

func hostOnly(host string) string {
	if h, _, err := net.SplitHostPort(host); err == nil {
		return h
	}
	return host
}

// TenantID returns the resolved tenant id from the gin context.
func TenantID(c *gin.Context) string {
	return c.GetString(GinKeyTenantID)
}
