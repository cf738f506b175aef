package config

const defaultPromptName = "startup_ceo"

const defaultPromptText = `Analyze this candidate for our AI builder event. BE SPECIFIC about why they are accepted or rejected.

Profile: {profile}
Company Info: {company_info}

ACCEPT if ANY are true:
- CEO/CTO/Founder at a tech or AI company
- Technical role at a large tech company
- Machine learning or AI research role
- Currently leads a technical team

REVIEW if the profile is technical but the evidence is thin.

REJECT everyone else.

Return this exact JSON structure:
{{
    "name": "",
    "title": "",
    "company": "",
    "location": "",
    "priority": "accept/review/reject",
    "priority_reasoning": "* [Specific reason 1]\n* [Specific reason 2]"
}}`

const studentTemplate = `Dear {name},

Based on your academic background, we'd love to have you join our event! You'll get to:
- Work hands-on with dedicated AI hardware
- Build projects on our inference API
- Connect with AI researchers and engineers

Next steps:
1. Register here: [LINK]
2. Join the community Discord: [DISCORD]
3. Review the docs: [DOCS]

Best regards,
The Events Team`

const startupTemplate = `Dear {name},

Your startup experience makes you an ideal participant. You'll have the opportunity to:
- Build on enterprise-grade AI infrastructure
- Network with potential partners
- Create scalable AI products

Next steps:
1. Register here: [LINK]
2. Join the community Discord: [DISCORD]
3. Book a call: [CALENDAR]

Best regards,
The Events Team`

const enterpriseTemplate = `Dear {name},

Your experience at {company} aligns with what we are building. We offer:
- Hands-on access to our AI infrastructure
- A direct line to our technical team
- Enterprise solution prototyping

Next steps:
1. Register here: [LINK]
2. Join the community Discord: [DISCORD]
3. Book a call: [CALENDAR]

Best regards,
The Events Team`

// Default returns the built-in control panel used when no file can be loaded.
func Default() Config {
	return Config{
		Sheet: SheetControls{
			Backend:                BackendGoogle,
			DatabasePath:           ".screener/workbook.duckdb",
			InputSheetName:         "Sheet1",
			OutputSheetName:        "Sheet2",
			HighlightProcessedRows: true,
			HighlightColor:         Color{Red: 0.95, Green: 0.95, Blue: 0.95},
			PriorityColors: map[string]Color{
				"accept": {Red: 0.8, Green: 0.9, Blue: 0.8},
				"review": {Red: 1.0, Green: 0.9, Blue: 0.6},
				"reject": {Red: 1.0, Green: 0.8, Blue: 0.8},
			},
			WriteHeaders: true,
		},
		Inference: InferenceControls{
			ActivePrompt:   defaultPromptName,
			Provider:       "cerebras",
			Model:          "llama3.3-70b",
			Temperature:    0,
			SystemPrompt:   "You are a strict technical evaluator that gives specific reasons for decisions.",
			TimeoutSeconds: 60,
			Prompts: map[string]PromptTemplate{
				defaultPromptName: {
					Description: "Look for startup CEOs and tech leaders",
					Text:        defaultPromptText,
					OutputFormat: map[string]bool{
						"name":               true,
						"title":              true,
						"company":            true,
						"location":           true,
						"priority":           true,
						"priority_reasoning": true,
					},
				},
			},
		},
		Response: ResponseFormat{
			RequiredFields: []string{
				"name",
				"email",
				"linkedin",
				"title",
				"company",
				"location",
				"priority",
				"priority_reasoning",
				"email_draft",
			},
			AllowedPriorities: []string{"accept", "review", "reject"},
			PositiveLabel:     "accept",
			DefaultValues: map[string]string{
				"name":               "",
				"title":              "",
				"company":            "",
				"location":           "",
				"priority":           "reject",
				"priority_reasoning": "* No specific criteria met\n* Profile lacks required qualifications",
				"email_draft":        "",
			},
			EmailTemplate: true,
			EmailTemplates: map[string]string{
				"student":    studentTemplate,
				"startup":    startupTemplate,
				"enterprise": enterpriseTemplate,
			},
			DefaultCategory: "enterprise",
		},
		Scraping: ScrapingControls{
			ScanForLinkedIn:   true,
			ResearchCompanies: true,
			FetchBackend:      FetchExa,
			CommonDomains: []string{
				"gmail.com",
				"yahoo.com",
				"hotmail.com",
				"outlook.com",
			},
			TimeoutSeconds: 30,
			MaxChars:       12000,
		},
		CRM: CRMControls{
			Enabled: false,
			Subject: "You're invited",
		},
	}
}
