package service

import (
	"fmt"
	"strings"

	mbi "google.golang.org/api/mybusinessbusinessinformation/v1"
)

var dayNames = map[string]string{
	"MONDAY":    "Monday",
	"TUESDAY":   "Tuesday",
	"WEDNESDAY": "Wednesday",
	"THURSDAY":  "Thursday",
	"FRIDAY":    "Friday",
	"SATURDAY":  "Saturday",
	"SUNDAY":    "Sunday",
}

func dayName(day string) string {
	if name, ok := dayNames[day]; ok {
		return name
	}
	return day
}

// FormatTime renders a 24h time as "9:05 AM". Hour 0 and 12 both print as 12.
func FormatTime(hours, minutes int64) string {
	period := "AM"
	if hours >= 12 {
		period = "PM"
	}
	h := hours % 12
	if h == 0 {
		h = 12
	}
	return fmt.Sprintf("%d:%02d %s", h, minutes, period)
}

func closesAtMidnight(p *mbi.TimePeriod) bool {
	return p.CloseTime != nil && p.CloseTime.Hours == 24
}

// ParseBusinessHours turns regular hours into one human readable line.
func ParseBusinessHours(hours *mbi.BusinessHours) string {
	if hours == nil || hours.Periods == nil {
		return "Hours not available"
	}
	if len(hours.Periods) == 0 {
		return "Closed"
	}

	if len(hours.Periods) == 7 {
		allDay := true
		for _, p := range hours.Periods {
			if !closesAtMidnight(p) || p.OpenDay != p.CloseDay {
				allDay = false
				break
			}
		}
		if allDay {
			return "Open 24 hours"
		}
	}

	entries := make([]string, 0, len(hours.Periods))
	for _, p := range hours.Periods {
		day := dayName(p.OpenDay)
		switch {
		case closesAtMidnight(p):
			entries = append(entries, day+": Open 24 hours")
		case p.OpenTime == nil || p.CloseTime == nil:
			entries = append(entries, day+": Hours not specified")
		default:
			entries = append(entries, fmt.Sprintf("%s: %s - %s", day,
				FormatTime(p.OpenTime.Hours, p.OpenTime.Minutes),
				FormatTime(p.CloseTime.Hours, p.CloseTime.Minutes)))
		}
	}
	return strings.Join(entries, ", ")
}

// ParseServiceArea lists the served places of a service-area business.
func ParseServiceArea(area *mbi.ServiceAreaBusiness) string {
	if area == nil || area.Places == nil || len(area.Places.PlaceInfos) == 0 {
		return "Service area not specified"
	}
	switch area.BusinessType {
	case "SERVICE_AREA", "CUSTOMER_LOCATION_ONLY", "CUSTOMER_AND_BUSINESS_LOCATION":
	default:
		return "Service area not specified"
	}

	names := make([]string, 0, len(area.Places.PlaceInfos))
	for _, place := range area.Places.PlaceInfos {
		if place.PlaceName != "" {
			names = append(names, place.PlaceName)
		}
	}
	if len(names) == 0 {
		return "Service area not specified"
	}
	return "Serves: " + strings.Join(names, ", ")
}

// formatAddress joins the postal address lines the way Maps prints them.
func formatAddress(addr *mbi.PostalAddress) string {
	if addr == nil {
		return "Address not available"
	}

	var parts []string
	for _, line := range addr.AddressLines {
		if line != "" {
			parts = append(parts, line)
		}
	}
	if addr.Locality != "" {
		parts = append(parts, addr.Locality)
	}
	region := strings.TrimSpace(addr.AdministrativeArea + " " + addr.PostalCode)
	if region != "" {
		parts = append(parts, region)
	}
	if addr.RegionCode != "" {
		parts = append(parts, addr.RegionCode)
	}

	if len(parts) == 0 {
		return "Address not available"
	}
	return strings.Join(parts, ", ")
}
