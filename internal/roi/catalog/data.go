// internal/roi/catalog/data.go
package catalog

func sol(name string, pct float64) Solution {
	return Solution{Name: name, TimeSavingsPercent: pct}
}

// builtinIndustries returns a fresh copy of the compiled-in table on every
// call.
func builtinIndustries() []Industry {
	return []Industry{
		{Name: "All Industries", BaseMultiplier: 3.5, Solutions: []Solution{
			sol("AI Workflow Automation", 35),
			sol("Intelligent Document Processing", 25),
			sol("Customer Service Chatbots", 20),
			sol("Predictive Analytics", 15),
		}},
		{Name: "Healthcare", BaseMultiplier: 3.8, Solutions: []Solution{
			sol("Patient Intake Automation", 40),
			sol("Clinical Documentation AI", 30),
			sol("Appointment Scheduling Assistant", 25),
			sol("Claims Processing Automation", 20),
		}},
		{Name: "Financial Services", BaseMultiplier: 4.2, Solutions: []Solution{
			sol("Fraud Detection", 35),
			sol("Automated Compliance Reporting", 30),
			sol("Loan Underwriting Automation", 25),
			sol("Client Onboarding (KYC)", 20),
		}},
		{Name: "Government", BaseMultiplier: 3.0, Solutions: []Solution{
			sol("Citizen Request Routing", 30),
			sol("Permit Processing Automation", 25),
			sol("Records Digitization", 20),
			sol("Benefits Eligibility Screening", 15),
		}},
		{Name: "Manufacturing", BaseMultiplier: 3.6, Solutions: []Solution{
			sol("Predictive Maintenance", 35),
			sol("Quality Inspection Vision", 25),
			sol("Supply Chain Forecasting", 20),
			sol("Production Scheduling Optimization", 15),
		}},
		{Name: "Retail", BaseMultiplier: 3.4, Solutions: []Solution{
			sol("Inventory Optimization", 30),
			sol("Personalized Recommendations", 25),
			sol("Customer Support Automation", 20),
			sol("Dynamic Pricing", 15),
		}},
		{Name: "Real Estate", BaseMultiplier: 3.5, Solutions: []Solution{
			sol("Lead Qualification Automation", 35),
			sol("Property Valuation Models", 25),
			sol("Lease Document Processing", 20),
			sol("Tenant Communication Assistant", 15),
		}},
		{Name: "Legal", BaseMultiplier: 3.7, Solutions: []Solution{
			sol("Contract Review Automation", 40),
			sol("Legal Research Assistant", 30),
			sol("E-Discovery Processing", 25),
			sol("Client Intake Automation", 15),
		}},
		{Name: "Education", BaseMultiplier: 3.1, Solutions: []Solution{
			sol("Automated Grading", 30),
			sol("Enrollment Processing", 25),
			sol("Student Support Chatbot", 20),
			sol("Curriculum Planning Assistant", 15),
		}},
		{Name: "Insurance", BaseMultiplier: 3.9, Solutions: []Solution{
			sol("Claims Triage Automation", 35),
			sol("Underwriting Risk Scoring", 30),
			sol("Policy Document Processing", 25),
			sol("Policyholder Service Assistant", 15),
		}},
		{Name: "Construction", BaseMultiplier: 3.3, Solutions: []Solution{
			sol("Project Estimating Automation", 30),
			sol("Safety Compliance Monitoring", 25),
			sol("Subcontractor Bid Analysis", 20),
			sol("Site Progress Reporting", 15),
		}},
		{Name: "Logistics & Transportation", BaseMultiplier: 3.6, Solutions: []Solution{
			sol("Route Optimization", 35),
			sol("Freight Document Processing", 25),
			sol("Fleet Maintenance Prediction", 20),
			sol("Shipment Tracking Assistant", 15),
		}},
		{Name: "Hospitality", BaseMultiplier: 3.2, Solutions: []Solution{
			sol("Reservation Management Automation", 30),
			sol("Guest Messaging Assistant", 25),
			sol("Revenue Management", 20),
			sol("Housekeeping Scheduling", 15),
		}},
		{Name: "Technology", BaseMultiplier: 4.0, Solutions: []Solution{
			sol("IT Service Desk Automation", 35),
			sol("Code Review Assistant", 30),
			sol("Incident Response Automation", 25),
			sol("Customer Onboarding Automation", 20),
		}},
		{Name: "Marketing & Advertising", BaseMultiplier: 3.7, Solutions: []Solution{
			sol("Content Generation", 40),
			sol("Campaign Performance Analytics", 25),
			sol("Audience Segmentation", 20),
			sol("Social Media Scheduling", 15),
		}},
		{Name: "Energy & Utilities", BaseMultiplier: 3.4, Solutions: []Solution{
			sol("Grid Load Forecasting", 30),
			sol("Meter Data Processing", 25),
			sol("Outage Response Automation", 20),
			sol("Customer Billing Assistant", 15),
		}},
		{Name: "Nonprofit", BaseMultiplier: 3.0, Solutions: []Solution{
			sol("Donor Management Automation", 30),
			sol("Grant Application Assistant", 25),
			sol("Volunteer Coordination", 20),
			sol("Impact Reporting", 15),
		}},
		{Name: "Professional Services", BaseMultiplier: 3.8, Solutions: []Solution{
			sol("Proposal Generation", 35),
			sol("Time & Billing Automation", 30),
			sol("Client Reporting Automation", 20),
			sol("Resource Planning", 15),
		}},
		{Name: "Automotive", BaseMultiplier: 3.5, Solutions: []Solution{
			sol("Dealer Lead Management", 30),
			sol("Service Appointment Automation", 25),
			sol("Parts Inventory Forecasting", 20),
			sol("Warranty Claims Processing", 15),
		}},
		{Name: "Telecommunications", BaseMultiplier: 3.6, Solutions: []Solution{
			sol("Network Fault Prediction", 35),
			sol("Customer Churn Analytics", 25),
			sol("Order Provisioning Automation", 20),
			sol("Support Ticket Routing", 15),
		}},
		{Name: "Agriculture", BaseMultiplier: 3.1, Solutions: []Solution{
			sol("Crop Yield Forecasting", 30),
			sol("Equipment Maintenance Prediction", 25),
			sol("Supply Contract Processing", 20),
			sol("Compliance Record Keeping", 15),
		}},
		{Name: "E-commerce", BaseMultiplier: 3.9, Solutions: []Solution{
			sol("Order Fulfillment Automation", 35),
			sol("Product Catalog Enrichment", 25),
			sol("Returns Processing", 20),
			sol("Shopping Assistant Chatbot", 15),
		}},
	}
}

// Default builds the catalog from the compiled-in table.
func Default() *Catalog {
	c, err := New(builtinIndustries())
	if err != nil {
		// the built-in table is covered by tests; a failure here is a programming error
		panic(err)
	}
	return c
}
