package registry

import (
	"net/url"
	"strings"

	"github.com/woozymasta/lotexport/internal/parcel"
)

// WhereClause builds the attribute filter for an identifier.
func WhereClause(id parcel.Identifier) string {
	if id.Region == parcel.QLD {
		return "lotplan = " + quote(id.LotPlan())
	}

	where := []string{
		"lotnumber = " + quote(id.Lot),
		"planlabel = " + quote(id.Plan),
	}
	if id.HasSection() {
		where = append(where, "sectionnumber = "+quote(id.Section))
	} else {
		where = append(where, "(sectionnumber IS NULL OR sectionnumber = '')")
	}

	return strings.Join(where, " AND ")
}

// QueryParams returns the ArcGIS query string for an identifier.
func QueryParams(id parcel.Identifier, outFields []string) url.Values {
	fields := "*"
	if len(outFields) > 0 {
		fields = strings.Join(outFields, ",")
	}

	q := url.Values{}
	q.Set("where", WhereClause(id))
	q.Set("outFields", fields)
	q.Set("returnGeometry", "true")
	q.Set("outSR", "4326")
	q.Set("f", "geoJSON")

	return q
}

// quote renders a SQL string literal, doubling embedded single quotes.
func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
