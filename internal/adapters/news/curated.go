package news

import (
	"context"
	"time"

	"github.com/kunaldubey10/Agrishield/internal/core/domain"
)

// Curated implements ports.NewsSource with a fixed list of agricultural
// headlines dated relative to now. It never fails and ignores the query.
type Curated struct {
	now func() time.Time
}

func NewCurated(now func() time.Time) *Curated {
	if now == nil {
		now = time.Now
	}
	return &Curated{now: now}
}

func (c *Curated) Name() string { return "curated" }

type curatedItem struct {
	daysAgo     int
	title       string
	description string
	url         string
	source      string
	image       string
}

var curatedItems = []curatedItem{
	{1, "Government Announces ₹2,000 Crore Package for Agricultural Modernization",
		"The Ministry of Agriculture unveiled a comprehensive package aimed at modernizing farming techniques, including subsidies for drip irrigation systems and solar-powered equipment across 10 states.",
		"https://pib.gov.in/", "Press Information Bureau",
		"https://images.unsplash.com/photo-1625246333195-78d9c38ad449?w=400&h=300&fit=crop"},
	{1, "Climate-Resistant Wheat Variety Shows 30% Higher Yield in Field Trials",
		"ICAR researchers have developed a new wheat variety resistant to heat stress and drought conditions, showing promising results in multi-location trials across Punjab and Haryana.",
		"https://icar.org.in/", "ICAR",
		"https://images.unsplash.com/photo-1574323347407-f5e1ad6d020b?w=400&h=300&fit=crop"},
	{2, "Organic Farming Gets Boost: New Certification System Launched",
		"The government launches a digital certification system for organic produce, aimed at reducing certification time from 6 months to 30 days and increasing farmer participation in organic agriculture.",
		"https://www.apeda.gov.in/", "APEDA",
		"https://images.unsplash.com/photo-1530836369250-ef72a3f5cda8?w=400&h=300&fit=crop"},
	{2, "AI-Powered Pest Detection System Deployed in 500 Villages",
		"A new smartphone-based AI system helps farmers identify crop pests and diseases within seconds, providing instant treatment recommendations in local languages.",
		"https://www.farmer.gov.in/", "Farmer Portal",
		"https://images.unsplash.com/photo-1416879595882-3373a0480b5b?w=400&h=300&fit=crop"},
	{3, "Mandi Prices: Wheat Touches ₹2,500/Quintal in Major Markets",
		"Wheat prices surge to ₹2,500 per quintal in key mandis across North India due to strong demand and lower production estimates, benefiting farmers who held their stock.",
		"https://agmarknet.gov.in/", "Agmarknet",
		"https://images.unsplash.com/photo-1605000797499-95a51c5269ae?w=400&h=300&fit=crop"},
	{3, "Drip Irrigation Adoption Increases by 45% After Subsidy Scheme",
		"Over 2 lakh farmers adopted drip irrigation systems in the last quarter, leading to 40-60% water savings and improved crop yields in water-scarce regions.",
		"https://pmksy.gov.in/", "PMKSY",
		"https://images.unsplash.com/photo-1625246597776-23f3c0e73611?w=400&h=300&fit=crop"},
	{4, "Export Opportunities: Global Demand for Indian Basmati Rice Soars",
		"Indian basmati rice exports expected to reach $5 billion this year as international demand increases from Middle East and European markets.",
		"https://commerce.gov.in/", "Ministry of Commerce",
		"https://images.unsplash.com/photo-1536304929831-69008b1e9b7d?w=400&h=300&fit=crop"},
	{4, "Farmers Embrace Solar Power: 50,000 Solar Pumps Installed This Year",
		"The PM-KUSUM scheme achieves milestone with installation of 50,000 solar water pumps, helping farmers reduce electricity costs by up to 80%.",
		"https://mnre.gov.in/", "MNRE",
		"https://images.unsplash.com/photo-1509391366360-2e959784a276?w=400&h=300&fit=crop"},
	{5, "Precision Agriculture: Drone Technology Reaches 1,000 Villages",
		"Agricultural drones for crop monitoring and pesticide spraying now accessible to farmers through custom hiring centers, reducing costs by 50%.",
		"https://agricoop.nic.in/", "Dept of Agriculture",
		"https://images.unsplash.com/photo-1473968512647-3e447244af8f?w=400&h=300&fit=crop"},
	{5, "Crop Insurance: ₹15,000 Crore Claims Settled for Kharif Season",
		"Pradhan Mantri Fasal Bima Yojana settles record claims benefiting over 2 crore farmers affected by unseasonal rains and crop damage.",
		"https://pmfby.gov.in/", "PMFBY",
		"https://images.unsplash.com/photo-1523348837708-15d4a09cfac2?w=400&h=300&fit=crop"},
	{6, "Horticulture Sector Growth: Fruit Production Up 8% This Year",
		"India's horticulture sector shows robust growth with fruit production increasing by 8%, driven by improved varieties and better farm practices.",
		"https://nhb.gov.in/", "National Horticulture Board",
		"https://images.unsplash.com/photo-1464454709131-ffd692591ee5?w=400&h=300&fit=crop"},
	{6, "Soil Health Cards: 12 Crore Cards Distributed to Farmers",
		"Soil Health Card scheme reaches major milestone, helping farmers optimize fertilizer use and improve soil quality through scientific recommendations.",
		"https://soilhealth.dac.gov.in/", "Soil Health Portal",
		"https://images.unsplash.com/photo-1592982537447-7440770cbfc9?w=400&h=300&fit=crop"},
}

func (c *Curated) Search(_ context.Context, _ string) ([]domain.Article, error) {
	now := c.now().UTC()
	out := make([]domain.Article, 0, len(curatedItems))
	for _, it := range curatedItems {
		out = append(out, domain.Article{
			Title:       it.title,
			Description: it.description,
			URL:         it.url,
			PublishedAt: now.AddDate(0, 0, -it.daysAgo),
			Source:      it.source,
			ImageURL:    it.image,
		})
	}
	return out, nil
}
