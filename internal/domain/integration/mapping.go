package integration

import (
	"context"
	"slices"
	"strconv"
	"strings"
)

// ---------------------------------------------------------------------------
// EntityType scopes a mapping entry
// ---------------------------------------------------------------------------

// EntityType identifies which kind of entity a mapping entry belongs to
type EntityType string

const (
	EntityCategory        EntityType = "category"
	EntityItem            EntityType = "item"
	EntityItemVariant     EntityType = "item_variant"
	EntityCustomer        EntityType = "customer"
	EntityDeliveryAddress EntityType = "delivery_address"
	EntityShippingProfile EntityType = "shipping_profile"
	EntityMethodOfPayment EntityType = "method_of_payment"
	EntityShop            EntityType = "shop"
	EntityReferrer        EntityType = "referrer"
	EntityCurrency        EntityType = "currency"
	EntityAttribute       EntityType = "attribute"
	EntityAttributeValue  EntityType = "attribute_value"
)

// AllEntityTypes returns every known entity type
func AllEntityTypes() []EntityType {
	return []EntityType{
		EntityCategory,
		EntityItem,
		EntityItemVariant,
		EntityCustomer,
		EntityDeliveryAddress,
		EntityShippingProfile,
		EntityMethodOfPayment,
		EntityShop,
		EntityReferrer,
		EntityCurrency,
		EntityAttribute,
		EntityAttributeValue,
	}
}

// IsValid returns true if the entity type is known
func (t EntityType) IsValid() bool {
	return slices.Contains(AllEntityTypes(), t)
}

// String returns the string representation
func (t EntityType) String() string {
	return string(t)
}

// ---------------------------------------------------------------------------
// MappingEntry
// ---------------------------------------------------------------------------

// MappingEntry associates a local identifier with a remote identifier.
// Hierarchical entities additionally carry the ordered remote path from the
// top level down to the entity itself; RemoteID is then the last element.
type MappingEntry struct {
	EntityType EntityType
	LocalID    string
	RemoteID   string
	Path       []string
}

// NewMappingEntry creates a flat mapping entry
func NewMappingEntry(entityType EntityType, localID, remoteID string) (MappingEntry, error) {
	entry := MappingEntry{EntityType: entityType, LocalID: localID, RemoteID: remoteID}
	if err := entry.Validate(); err != nil {
		return MappingEntry{}, err
	}
	return entry, nil
}

// NewPathMappingEntry creates a hierarchical mapping entry from a path of
// remote IDs.
func NewPathMappingEntry(entityType EntityType, localID string, path []string) (MappingEntry, error) {
	if len(path) == 0 {
		return MappingEntry{}, ErrInvalidMapping
	}
	entry := MappingEntry{
		EntityType: entityType,
		LocalID:    localID,
		RemoteID:   path[len(path)-1],
		Path:       slices.Clone(path),
	}
	if err := entry.Validate(); err != nil {
		return MappingEntry{}, err
	}
	return entry, nil
}

// Validate checks the entry invariants
func (e MappingEntry) Validate() error {
	if !e.EntityType.IsValid() {
		return ErrInvalidEntityType
	}
	if strings.TrimSpace(e.LocalID) == "" || strings.TrimSpace(e.RemoteID) == "" {
		return ErrInvalidMapping
	}
	if len(e.Path) > 0 && e.Path[len(e.Path)-1] != e.RemoteID {
		return ErrInvalidMapping
	}
	return nil
}

// Equal reports whether both entries map the same key to the same value
func (e MappingEntry) Equal(other MappingEntry) bool {
	return e.EntityType == other.EntityType &&
		e.LocalID == other.LocalID &&
		e.RemoteID == other.RemoteID &&
		slices.Equal(e.Path, other.Path)
}

// JoinedPath returns the path in its ';' separated storage form
func (e MappingEntry) JoinedPath() string {
	return strings.Join(e.Path, ";")
}

// SplitPath parses the ';' separated storage form of a path
func SplitPath(joined string) []string {
	if joined == "" {
		return nil
	}
	return strings.Split(joined, ";")
}

// ---------------------------------------------------------------------------
// Mapping store ports
// ---------------------------------------------------------------------------

// MappingReader resolves local identifiers. A miss is reported through
// found == false; err is reserved for storage failures.
type MappingReader interface {
	Resolve(ctx context.Context, entityType EntityType, localID string) (remoteID string, found bool, err error)
	ResolvePath(ctx context.Context, entityType EntityType, localID string) (path []string, found bool, err error)
}

// MappingWriter persists mapping entries
type MappingWriter interface {
	// Register stores the entry. Registering an identical entry again is a
	// no-op; registering a different value for an existing key returns
	// ErrMappingConflict.
	Register(ctx context.Context, entry MappingEntry) error
	// Replace stores the entry, overwriting any existing value.
	Replace(ctx context.Context, entry MappingEntry) error
	// Delete removes the entry. Deleting a missing entry is not an error.
	Delete(ctx context.Context, entityType EntityType, localID string) error
}

// MappingStore combines read and write access to the identifier mapping
type MappingStore interface {
	MappingReader
	MappingWriter
}

// RequireMapping resolves a mapping that must exist and turns a miss into
// an *UnresolvedReferenceError.
func RequireMapping(ctx context.Context, r MappingReader, entityType EntityType, localID string) (string, error) {
	remoteID, found, err := r.Resolve(ctx, entityType, localID)
	if err != nil {
		return "", err
	}
	if !found {
		return "", NewUnresolvedReferenceError(entityType, localID)
	}
	return remoteID, nil
}

// ResolveInt resolves a mapping whose remote value is numeric
func ResolveInt(ctx context.Context, r MappingReader, entityType EntityType, localID string) (int64, bool, error) {
	remoteID, found, err := r.Resolve(ctx, entityType, localID)
	if err != nil || !found {
		return 0, found, err
	}
	id, err := ParseRemoteID(remoteID)
	if err != nil {
		return 0, false, err
	}
	return id, true, nil
}

// FormatID renders a numeric shop identifier as a mapping key
func FormatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

// ParseRemoteID parses a numeric remote identifier
func ParseRemoteID(remoteID string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(remoteID), 10, 64)
	if err != nil {
		return 0, &ValidationError{Field: "remote id", Value: remoteID, Reason: ErrInvalidRemoteID.Error()}
	}
	return id, nil
}

// ---------------------------------------------------------------------------
// ShippingProfile is the composite remote value of a dispatch mapping
// ---------------------------------------------------------------------------

// ShippingProfile is stored as "presetID;serviceID"
type ShippingProfile struct {
	PresetID  int64
	ServiceID int64
}

// ParseShippingProfile parses the stored form of a shipping profile mapping
func ParseShippingProfile(remoteID string) (ShippingProfile, error) {
	preset, service, ok := strings.Cut(remoteID, ";")
	if !ok {
		return ShippingProfile{}, ErrInvalidShippingRef
	}
	presetID, err := strconv.ParseInt(strings.TrimSpace(preset), 10, 64)
	if err != nil {
		return ShippingProfile{}, ErrInvalidShippingRef
	}
	serviceID, err := strconv.ParseInt(strings.TrimSpace(service), 10, 64)
	if err != nil {
		return ShippingProfile{}, ErrInvalidShippingRef
	}
	return ShippingProfile{PresetID: presetID, ServiceID: serviceID}, nil
}

// String renders the stored form
func (p ShippingProfile) String() string {
	return strconv.FormatInt(p.PresetID, 10) + ";" + strconv.FormatInt(p.ServiceID, 10)
}
