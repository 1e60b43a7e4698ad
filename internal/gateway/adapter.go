package gateway

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"lanebook/internal/availability"
	"lanebook/internal/model"
)

// The backend has shipped several spellings of the same fields over time.
// Every accepted spelling is listed here and nowhere else.
var (
	bookingAliases = map[string][]string{
		"id":      {"id", "_id", "bookingId", "booking_id"},
		"date":    {"date", "bookingDate", "booking_date"},
		"start":   {"startTime", "starttime", "start_time", "start"},
		"end":     {"endTime", "endtime", "end_time", "end"},
		"lane":    {"lane", "lane_no", "laneNo", "laneNumber", "lane_number"},
		"guests":  {"guestCount", "guest_count", "guests", "numberOfGuests", "players"},
		"status":  {"status", "bookingStatus", "booking_status"},
		"package": {"package", "packageId", "package_id"},
		"cost":    {"packageCost", "package_cost", "packagePrice", "package_price"},
		"name":    {"customerName", "customer_name", "name", "fullName"},
		"email":   {"email", "customerEmail", "customer_email"},
		"phone":   {"phone", "phoneNumber", "phone_number", "customerPhone"},
	}

	hoursAliases = map[string][]string{
		"day":    {"dayOfWeek", "day_of_week", "dayofweek", "day", "weekday"},
		"opens":  {"openTime", "opentime", "open_time", "opens", "startTime", "starttime", "start_time"},
		"closes": {"closeTime", "closetime", "close_time", "closes", "endTime", "endtime", "end_time"},
		"closed": {"offDay", "offday", "off_day", "isClosed", "is_closed", "closed"},
	}

	packageAliases = map[string][]string{
		"id":          {"id", "_id", "packageId", "package_id"},
		"name":        {"name", "title", "packageName", "package_name"},
		"description": {"description", "details"},
		"price":       {"price", "cost", "amount"},
		"duration":    {"durationMinutes", "duration_minutes", "duration"},
		"guests":      {"maxGuests", "max_guests", "guests"},
	}
)

// envelopeKeys are the wrapper objects the backend uses around lists.
var envelopeKeys = []string{"data", "items", "results", "bookings", "businessHours", "business_hours", "packages"}

type record map[string]json.RawMessage

// lookup returns the first non-null value among the aliases of field.
func (r record) lookup(aliases map[string][]string, field string) (json.RawMessage, bool) {
	for _, name := range aliases[field] {
		raw, ok := r[name]
		if !ok {
			continue
		}
		if trimmed := bytes.TrimSpace(raw); len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
			continue
		}
		return raw, true
	}
	return nil, false
}

func (r record) str(aliases map[string][]string, field string) (string, bool) {
	raw, ok := r.lookup(aliases, field)
	if !ok {
		return "", false
	}
	return rawString(raw)
}

func (r record) integer(aliases map[string][]string, field string) (int, bool) {
	s, ok := r.str(aliases, field)
	if !ok {
		return 0, false
	}
	if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
		return int(f), true
	}
	return 0, false
}

func (r record) boolean(aliases map[string][]string, field string) (bool, bool) {
	s, ok := r.str(aliases, field)
	if !ok {
		return false, false
	}
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes", "y":
		return true, true
	case "false", "0", "no", "n", "":
		return false, true
	}
	return false, false
}

// rawString renders a JSON scalar as text: strings are unquoted, numbers and
// booleans keep their literal form. Objects and arrays are rejected.
func rawString(raw json.RawMessage) (string, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return "", false
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", false
		}
		return s, true
	case '{', '[':
		return "", false
	}
	return string(raw), true
}

// decodeList accepts a bare JSON array or an object wrapping one.
func decodeList(body []byte) ([]record, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, nil
	}

	var list []record
	if body[0] == '[' {
		if err := json.Unmarshal(body, &list); err != nil {
			return nil, fmt.Errorf("decode list: %w", err)
		}
		return list, nil
	}

	var wrap record
	if err := json.Unmarshal(body, &wrap); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	for _, key := range envelopeKeys {
		raw, ok := wrap[key]
		if !ok {
			continue
		}
		if raw = bytes.TrimSpace(raw); len(raw) > 0 && raw[0] == '{' {
			// {"data": {"bookings": [...]}}
			return decodeList(raw)
		}
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil, fmt.Errorf("decode %s: %w", key, err)
		}
		return list, nil
	}
	return nil, fmt.Errorf("decode envelope: no list field")
}

// normalizeBooking maps one backend booking onto the canonical shape. Fields that
// cannot be read are left zero and reported in issues; the record is still kept
// so guest totals stay complete.
func normalizeBooking(r record, loc *time.Location) (b model.Booking, issues []string) {
	b.ID, _ = r.str(bookingAliases, "id")
	if b.ID == "" {
		issues = append(issues, "id")
	}

	dateStr, _ := r.str(bookingAliases, "date")
	startStr, _ := r.str(bookingAliases, "start")
	endStr, _ := r.str(bookingAliases, "end")

	if d, ok := parseDate(dateStr, loc); ok {
		b.Date = d
	} else if d, ok := parseDate(startStr, loc); ok {
		// Some rows carry a full timestamp in startTime and no separate date.
		b.Date = d
	} else {
		issues = append(issues, "date")
	}

	var ok bool
	if b.StartTime, ok = normalizeClock(startStr); !ok {
		issues = append(issues, "start_time")
	}
	if b.EndTime, ok = normalizeClock(endStr); !ok {
		issues = append(issues, "end_time")
	}

	if b.Lane, ok = r.integer(bookingAliases, "lane"); !ok || b.Lane <= 0 {
		issues = append(issues, "lane")
	}
	if b.GuestCount, ok = r.integer(bookingAliases, "guests"); !ok || b.GuestCount < 0 {
		b.GuestCount = 0
		issues = append(issues, "guest_count")
	}

	status, _ := r.str(bookingAliases, "status")
	b.Status = model.ParseBookingStatus(status)

	b.CustomerName, _ = r.str(bookingAliases, "name")
	b.Email, _ = r.str(bookingAliases, "email")
	b.Phone, _ = r.str(bookingAliases, "phone")

	if raw, ok := r.lookup(bookingAliases, "package"); ok {
		if bytes.HasPrefix(bytes.TrimSpace(raw), []byte("{")) {
			var nested record
			if err := json.Unmarshal(raw, &nested); err == nil {
				p, _ := normalizePackage(nested)
				b.PackageID, b.PackageName = p.ID, p.Name
				if p.Price != 0 {
					price := p.Price
					b.PackageCost = &price
				}
			}
		} else {
			b.PackageID, _ = rawString(raw)
		}
	}
	if costStr, ok := r.str(bookingAliases, "cost"); ok {
		if cost, err := model.ParseMoney(costStr); err == nil {
			b.PackageCost = &cost
		} else {
			issues = append(issues, "package_cost")
		}
	}

	return b, issues
}

// normalizeWindow maps one backend business-hours row. The boolean is false when
// the weekday cannot be determined; such rows are unusable.
func normalizeWindow(r record) (model.BusinessHourWindow, bool) {
	var w model.BusinessHourWindow

	dayStr, ok := r.str(hoursAliases, "day")
	if !ok {
		return w, false
	}
	if w.DayOfWeek, ok = model.ParseWeekday(dayStr); !ok {
		return w, false
	}

	w.IsClosed, _ = r.boolean(hoursAliases, "closed")

	opens, _ := r.str(hoursAliases, "opens")
	closes, _ := r.str(hoursAliases, "closes")
	w.Opens, _ = normalizeClock(opens)
	w.Closes, _ = normalizeClock(closes)
	return w, true
}

func normalizePackage(r record) (model.Package, []string) {
	var (
		p      model.Package
		issues []string
	)
	p.ID, _ = r.str(packageAliases, "id")
	if p.ID == "" {
		issues = append(issues, "id")
	}
	p.Name, _ = r.str(packageAliases, "name")
	p.Description, _ = r.str(packageAliases, "description")
	if priceStr, ok := r.str(packageAliases, "price"); ok {
		if price, err := model.ParseMoney(priceStr); err == nil {
			p.Price = price
		} else {
			issues = append(issues, "price")
		}
	}
	p.DurationMinutes, _ = r.integer(packageAliases, "duration")
	p.MaxGuests, _ = r.integer(packageAliases, "guests")
	return p, issues
}

// ResolvePackageCosts fills PackageCost from the package catalog for bookings
// that reference a package but carry no price of their own.
func ResolvePackageCosts(bookings []model.Booking, idx model.PackageIndex) {
	for i := range bookings {
		b := &bookings[i]
		if b.PackageID == "" {
			continue
		}
		p, ok := idx[b.PackageID]
		if !ok {
			continue
		}
		if b.PackageName == "" {
			b.PackageName = p.Name
		}
		if b.PackageCost == nil {
			price := p.Price
			b.PackageCost = &price
		}
	}
}

// parseDate reads the calendar date from "2006-01-02" or any timestamp that
// starts with one. The date is taken as written, not converted between zones.
func parseDate(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if len(s) < len("2006-01-02") {
		return time.Time{}, false
	}
	d, err := time.ParseInLocation("2006-01-02", s[:10], loc)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

// normalizeClock returns "HH:MM" for any readable time of day, including the
// time part of an ISO or SQL-style timestamp. Unreadable input is returned unchanged so the
// availability engine can skip it.
func normalizeClock(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if len(s) > 10 && s[10] == ' ' && s[4] == '-' && s[7] == '-' {
		s = s[:10] + "T" + s[11:]
	}
	if _, after, ok := strings.Cut(s, "T"); ok && len(s) > 10 {
		s = after
		if i := strings.IndexAny(s, "Z+-"); i > 0 {
			s = s[:i]
		}
		if i := strings.Index(s, "."); i > 0 {
			s = s[:i]
		}
	}
	c, ok := availability.ParseClock(s)
	if !ok {
		return s, false
	}
	return c.String(), true
}
