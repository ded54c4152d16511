package normalize

import (
	"sort"
	"strconv"
	"strings"
)

// Labels used when a value is missing from the remote payload.
const (
	NotSpecified        = "not specified"
	NoSubscriptions     = "none"
	SubscriptionsNoID   = "active (no id)"
	SubscriptionIDsJoin = ", "
)

// Flag names read from the remote "flags" list.
const FlagCanOrder = "can_order"

var (
	pathAuthorized    = []string{"authorized"}
	pathTokenValid    = []string{"token_valid"}
	pathFlags         = []string{"flags"}
	pathRating        = []string{"profile", "rating"}
	pathStatus        = []string{"profile", "status"}
	pathLoyalty       = []string{"profile", "loyalty", "active"}
	pathSubscriptions = []string{"subscriptions"}
	pathDebtEnabled   = []string{"debt_flow", "enabled"}
	pathDebtLimit     = []string{"debt_flow", "limit"}
	pathPhone         = []string{"phone", "number"}
	pathPhoneIDs      = []string{"phone", "ids"}
	pathUserRef       = []string{"ids", "user_id"}
	pathAccountRef    = []string{"ids", "account_id"}
	pathDeviceRef     = []string{"ids", "device_id"}
	pathSessionRef    = []string{"ids", "session_id"}
)

// Account is the fixed-shape projection of an account-check response. It is
// both what gets persisted and what gets shown to the user.
type Account struct {
	Authorized        bool
	TokenValid        bool
	CanOrder          bool
	Rating            *float64
	Status            string
	Loyalty           bool
	SubscriptionIDs   []string
	SubscriptionCount int
	DebtFlowEnabled   bool
	DebtLimit         *float64
	Phone             string
	PhoneIDKeys       []string
	UserRef           string
	AccountRef        string
	DeviceRef         string
	SessionRef        string
	Flags             map[string]string
}

// NormalizeAccount extracts the Account fields from root. It never fails:
// anything missing or mistyped becomes the zero value.
func NormalizeAccount(root Value) Account {
	flags := IndexFlags(root.Get(pathFlags...))

	a := Account{
		Authorized:      root.Get(pathAuthorized...).Bool(),
		TokenValid:      root.Get(pathTokenValid...).Bool(),
		CanOrder:        Of(flags[FlagCanOrder]).Bool(),
		Rating:          optionalNumber(root.Get(pathRating...)),
		Status:          optionalString(root.Get(pathStatus...)),
		Loyalty:         root.Get(pathLoyalty...).Bool(),
		DebtFlowEnabled: root.Get(pathDebtEnabled...).Bool(),
		DebtLimit:       optionalNumber(root.Get(pathDebtLimit...)),
		Phone:           optionalString(root.Get(pathPhone...)),
		PhoneIDKeys:     root.Get(pathPhoneIDs...).Keys(),
		UserRef:         optionalString(root.Get(pathUserRef...)),
		AccountRef:      optionalString(root.Get(pathAccountRef...)),
		DeviceRef:       optionalString(root.Get(pathDeviceRef...)),
		SessionRef:      optionalString(root.Get(pathSessionRef...)),
		Flags:           flags,
	}
	a.SubscriptionIDs, a.SubscriptionCount = activeSubscriptions(root.Get(pathSubscriptions...))

	return a
}

// IndexFlags turns a list of {"name": ..., "value": ...} entries into a map.
// Later entries overwrite earlier ones with the same name; entries without a
// usable name are skipped.
func IndexFlags(list Value) map[string]string {
	flags := make(map[string]string)
	for _, item := range list.List() {
		name, ok := item.Get("name").String()
		if !ok || name == "" {
			continue
		}
		value, _ := item.Get("value").String()
		flags[name] = value
	}
	return flags
}

// activeSubscriptions returns the ids of subscriptions not explicitly marked
// inactive, plus how many such subscriptions there are (with or without id).
func activeSubscriptions(list Value) ([]string, int) {
	ids := []string{}
	count := 0
	for _, item := range list.List() {
		if active := item.Get("active"); active.Present() && !active.Bool() {
			continue
		}
		count++
		if id, ok := item.Get("id").String(); ok && id != "" {
			ids = append(ids, id)
		}
	}
	return ids, count
}

// SubscriptionSummary renders the active subscriptions for display.
func SubscriptionSummary(ids []string, count int) string {
	switch {
	case len(ids) > 0:
		return strings.Join(ids, SubscriptionIDsJoin)
	case count > 0:
		return SubscriptionsNoID
	default:
		return NoSubscriptions
	}
}

// Line is one label/value pair of the rendered summary.
type Line struct {
	Label string
	Value string
}

// Lines renders every field of a in a fixed order. Missing values are shown
// as NotSpecified.
func (a Account) Lines() []Line {
	return []Line{
		{"Authorized", yesNo(a.Authorized)},
		{"Token valid", yesNo(a.TokenValid)},
		{"Can order", yesNo(a.CanOrder)},
		{"Rating", numberOrDefault(a.Rating)},
		{"Status", stringOrDefault(a.Status)},
		{"Loyalty", yesNo(a.Loyalty)},
		{"Subscriptions", SubscriptionSummary(a.SubscriptionIDs, a.SubscriptionCount)},
		{"Debt flow", yesNo(a.DebtFlowEnabled)},
		{"Debt limit", numberOrDefault(a.DebtLimit)},
		{"Phone", stringOrDefault(a.Phone)},
		{"Phone ids", listOrDefault(a.PhoneIDKeys)},
		{"User id", stringOrDefault(a.UserRef)},
		{"Account id", stringOrDefault(a.AccountRef)},
		{"Device id", stringOrDefault(a.DeviceRef)},
		{"Session id", stringOrDefault(a.SessionRef)},
		{"Flags", flagsOrDefault(a.Flags)},
	}
}

// Summary joins Lines as "Label: value" rows.
func (a Account) Summary() string {
	var b strings.Builder
	for i, l := range a.Lines() {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(l.Label)
		b.WriteString(": ")
		b.WriteString(l.Value)
	}
	return b.String()
}

func optionalString(v Value) string {
	s, _ := v.String()
	return s
}

func optionalNumber(v Value) *float64 {
	n, ok := v.Number()
	if !ok {
		return nil
	}
	return &n
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func stringOrDefault(s string) string {
	if strings.TrimSpace(s) == "" {
		return NotSpecified
	}
	return s
}

func numberOrDefault(n *float64) string {
	if n == nil {
		return NotSpecified
	}
	return strconv.FormatFloat(*n, 'f', -1, 64)
}

func listOrDefault(items []string) string {
	if len(items) == 0 {
		return NotSpecified
	}
	return strings.Join(items, ", ")
}

func flagsOrDefault(flags map[string]string) string {
	if len(flags) == 0 {
		return NotSpecified
	}
	names := make([]string, 0, len(flags))
	for name := range flags {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = name + "=" + flags[name]
	}
	return strings.Join(parts, ", ")
}
