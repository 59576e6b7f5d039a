package preset

import "server/internal/domain"

// BuiltinCatalog returns the presets shipped with the server. Operators can
// layer additional definitions on top via PRESETS_PATH; ids must not clash.
func BuiltinCatalog() []domain.Preset {
	return []domain.Preset{
		luxuryStudio(),
		productCallout(),
		quickRetouch(),
	}
}

// luxuryStudio is the studio-quality enhancement preset: deterministic
// path-patch injection with a strict stringify-with-wrapper compiler.
func luxuryStudio() domain.Preset {
	return domain.Preset{
		ID:          "luxury-studio",
		Name:        "Luxury Studio",
		Description: "Studio-quality product photo enhancement with deterministic patch injection and a strict compiler.",
		Template: map[string]any{
			"task":        "studio_quality_product_photo_enhancement",
			"description": "Transform the input image into a flawless, studio-quality, high-end product photograph suitable for luxury advertising and e-commerce.",
			"preserve": map[string]any{
				"shape":        true,
				"proportions":  true,
				"branding":     true,
				"logos":        true,
				"materials":    true,
				"fine_details": true,
			},
			"lighting": map[string]any{
				"type":  "professional studio lighting",
				"setup": []any{"softbox", "three-point lighting"},
				"characteristics": map[string]any{
					"soft":                  true,
					"diffused":              true,
					"controlled_highlights": true,
					"gentle_shadows":        true,
					"no_harsh_reflections":  true,
					"no_color_casts":        true,
					"even_exposure":         true,
					"realistic_depth":       true,
				},
			},
			"surface_and_texture": map[string]any{
				"enhancement":         "high realism",
				"supported_materials": []any{"metal", "glass", "plastic", "fabric", "leather", "wood", "liquid", "matte", "gloss"},
				"retouching": map[string]any{
					"remove_dust":         true,
					"remove_scratches":    true,
					"remove_fingerprints": true,
					"remove_dents":        true,
					"remove_noise":        true,
					"maintain_realism":    true,
				},
			},
			"color_and_tone": map[string]any{
				"color_correction":     "neutral and accurate",
				"white_balance":        "clean whites",
				"black_levels":         "deep blacks",
				"saturation":           "rich but realistic",
				"brand_color_accuracy": true,
			},
			"background": map[string]any{
				"type":  "seamless studio background",
				"color": "pure white",
				"qualities": map[string]any{
					"distraction_free":   true,
					"smooth":             true,
					"professionally_lit": true,
					"no_banding":         true,
					"no_artifacts":       true,
				},
			},
			"composition": map[string]any{
				"alignment":      "perfectly straight",
				"framing":        "optimal for product focus",
				"layout":         []any{"centered", "rule_of_thirds"},
				"negative_space": "balanced",
			},
			"sharpness_and_quality": map[string]any{
				"focus":                    "ultra-sharp across entire product",
				"micro_contrast":           "high",
				"no_motion_blur":           true,
				"no_noise":                 true,
				"no_compression_artifacts": true,
			},
			"post_processing": map[string]any{
				"style":               "professional retouching only",
				"no_artistic_filters": true,
				"no_stylization":      true,
				"photorealistic":      true,
			},
			"output": map[string]any{
				"resolution": "ultra-high-resolution",
				"quality":    "studio-grade",
				"use_cases":  []any{"luxury advertising", "e-commerce hero image", "product catalogs", "brand marketing"},
			},
			"optional_modifiers": map[string]any{
				"soft_shadow_beneath_product":       false,
				"floating_product_with_drop_shadow": false,
				"luxury_brand_aesthetic":            false,
				"ecommerce_ready":                   false,
				"minimal_apple_style_lighting":      false,
			},
		},
		InjectionMode: domain.InjectionPathPatch,
		VariablesSchema: []domain.VariableSchema{
			{Key: "background_color", Type: domain.VariableColor, Label: "Background Color", Default: "#ffffff"},
			{Key: "soft_shadow_beneath_product", Type: domain.VariableBoolean, Default: false},
			{Key: "floating_product_with_drop_shadow", Type: domain.VariableBoolean, Default: false},
			{Key: "luxury_brand_aesthetic", Type: domain.VariableBoolean, Default: false},
			{Key: "ecommerce_ready", Type: domain.VariableBoolean, Default: false},
			{Key: "minimal_apple_style_lighting", Type: domain.VariableBoolean, Label: "Minimal Apple-Style Lighting", Default: false},
		},
		Patches: []domain.Patch{
			{Path: "$.background.color", VariableKey: "background_color"},
			{Path: "$.optional_modifiers.soft_shadow_beneath_product", VariableKey: "soft_shadow_beneath_product"},
			{Path: "$.optional_modifiers.floating_product_with_drop_shadow", VariableKey: "floating_product_with_drop_shadow"},
			{Path: "$.optional_modifiers.luxury_brand_aesthetic", VariableKey: "luxury_brand_aesthetic"},
			{Path: "$.optional_modifiers.ecommerce_ready", VariableKey: "ecommerce_ready"},
			{Path: "$.optional_modifiers.minimal_apple_style_lighting", VariableKey: "minimal_apple_style_lighting"},
		},
		DefaultOptions: map[string]any{
			"num_images":    1,
			"output_format": "png",
			"resolution":    "1K",
		},
		CompilerRules: domain.CompilerRules{
			Strict:               true,
			StringifyWithWrapper: true,
			WrapperTemplate:      "Use this JSON spec exactly. Do not deviate:\n<json>",
		},
	}
}

// productCallout demonstrates placeholder injection with a direct prompt
// field extraction.
func productCallout() domain.Preset {
	return domain.Preset{
		ID:          "product-callout",
		Name:        "Product Callout",
		Description: "Free-form scene description with placeholder substitution.",
		Template: map[string]any{
			"render": map[string]any{
				"prompt": "Place the product on a {{surface}} surface with {{mood}} lighting, keep original shape and branding intact. Accent color {{accent_color}}.",
			},
		},
		InjectionMode: domain.InjectionPlaceholder,
		VariablesSchema: []domain.VariableSchema{
			{Key: "surface", Type: domain.VariableSelect, Required: true, Options: []domain.SelectOption{
				{Label: "Marble", Value: "marble"},
				{Label: "Wood", Value: "wood"},
				{Label: "Linen", Value: "linen"},
			}},
			{Key: "mood", Type: domain.VariableSelect, Default: "soft", Options: []domain.SelectOption{
				{Label: "Soft", Value: "soft"},
				{Label: "Dramatic", Value: "dramatic"},
			}},
			{Key: "accent_color", Type: domain.VariableColor, Default: "#d4af37"},
		},
		DefaultOptions: map[string]any{
			"num_images":    1,
			"output_format": "png",
			"resolution":    "2K",
		},
		CompilerRules: domain.CompilerRules{
			Strict:          true,
			PromptFieldPath: "render.prompt",
		},
	}
}

// quickRetouch demonstrates field-mapping compilation over a small
// placeholder template.
func quickRetouch() domain.Preset {
	return domain.Preset{
		ID:          "quick-retouch",
		Name:        "Quick Retouch",
		Description: "Adjustable cleanup pass compiled from field mappings.",
		Template: map[string]any{
			"cleanup": map[string]any{
				"strength": "{{strength}}",
				"denoise":  "{{denoise}}",
			},
			"background": map[string]any{
				"color": "{{background_color}}",
			},
		},
		InjectionMode: domain.InjectionPlaceholder,
		VariablesSchema: []domain.VariableSchema{
			{Key: "strength", Type: domain.VariableSlider, Default: 50, Min: f64(0), Max: f64(100), Step: f64(5)},
			{Key: "denoise", Type: domain.VariableBoolean, Default: true},
			{Key: "background_color", Type: domain.VariableColor, Default: "#ffffff"},
		},
		DefaultOptions: map[string]any{
			"num_images":    1,
			"output_format": "jpeg",
			"resolution":    "1K",
		},
		CompilerRules: domain.CompilerRules{
			Strict: true,
			FieldMappings: []domain.FieldMapping{
				{Field: "cleanup.strength", Phrase: "Retouch strength (0-100)"},
				{Field: "cleanup.denoise", Phrase: "Apply denoise"},
				{Field: "background.color", Phrase: "Background color"},
			},
		},
	}
}

func f64(v float64) *float64 { return &v }
