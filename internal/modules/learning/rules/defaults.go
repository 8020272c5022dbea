package rules

func defaults() *Set {
	return &Set{
		Segmentation: Segmentation{
			HeaderPatterns: []string{
				`^(?i)chapter\s+(\d+|[ivxlcdm]+)\b`,
				`^(?i)(part|unit|lesson|module)\s+\d+\b`,
				`^\d+(\.\d+)*\.?\s+[A-Z][^.!?]*$`,
				`^[IVXLCDM]+\.\s+[A-Z][^.!?]*$`,
			},
			MaxHeaderLength: 100,
			AllCapsMaxWords: 8,
			SummaryMaxChars: 500,
			FallbackTitle:   "Document",
			PreambleTitle:   "Introduction",
		},
		Analysis: Analysis{
			Abbreviations:    []string{"e.g.", "i.e.", "etc.", "vs.", "Dr.", "Mr.", "Mrs.", "Ms.", "Prof.", "Fig.", "No.", "approx."},
			MinSentenceWords: 4,
			MinSentenceChars: 20,
			MaxSentences:     50,
			DefinitionIndicators: []string{
				"is", "are", "refers to", "means", "defined as", "consists of", "comprises", "contains",
			},
			ExampleIndicators: []string{
				"for example", "such as", "including", "e.g.", "i.e.", "notably", "for instance",
			},
			ProcedureIndicators: []string{
				"first", "then", "next", "finally", "step", "process", "method",
			},
			ConceptIndicators: []string{
				"called", "known as", "is a", "is an", "refers to", "defined as", "termed",
			},
			ConceptMaxWords: 5,
			TechnicalTerms: []string{
				"algorithm", "function", "database", "variable", "protocol", "network", "system", "model",
				"process", "method", "structure", "interface", "framework", "theory", "principle", "equation",
				"molecule", "cell", "energy", "memory", "compiler", "server", "query", "index", "matrix",
				"vector", "hypothesis", "analysis", "component", "module",
			},
			StopWords: []string{
				"a", "an", "the", "this", "that", "these", "those", "it", "its", "of", "to", "in", "on", "at",
				"for", "with", "by", "from", "and", "or", "but", "as", "be", "is", "are", "was", "were", "which",
				"who", "what", "when", "where", "how", "we", "you", "they", "he", "she", "there", "their", "each",
				"every", "some", "any", "such", "also", "not", "can", "may", "will", "would", "should",
			},
			RelationKeywords: []RelationKeyword{
				{Phrase: "is a", Kind: RelationIsA},
				{Phrase: "is an", Kind: RelationIsA},
				{Phrase: "has a", Kind: RelationHasA},
				{Phrase: "contains", Kind: RelationHasA},
				{Phrase: "leads to", Kind: RelationLeadsTo},
				{Phrase: "causes", Kind: RelationLeadsTo},
				{Phrase: "requires", Kind: RelationRequires},
				{Phrase: "needs", Kind: RelationRequires},
				{Phrase: "can", Kind: RelationCan},
				{Phrase: "may", Kind: RelationCan},
			},
			KeywordLimit: 8,
		},
		Questions: Questions{
			DefaultDifficulty: "medium",
			ConceptPhrasings: []string{
				"What is the definition of %s?",
				"Which of the following best describes %s?",
				"What does %s refer to?",
				"Which statement correctly defines %s?",
			},
			ConceptDistractorTemplates: []string{
				"%s is a type of %s.",
				"%s refers to the process of %s.",
				"%s is used primarily for %s.",
				"%s is the opposite of %s.",
			},
			ApplicationPhrasings: []string{
				"Which of the following is an example of %s?",
				"Which scenario best illustrates %s?",
				"Which statement shows %s in practice?",
			},
			ApplicationDistractorTemplates: []string{
				"An example of %s is %s.",
				"%s is best illustrated by %s.",
				"A typical case of %s is %s.",
			},
			RelationshipPhrasings: []string{
				"What is the relationship between %s and %s?",
				"How is %s related to %s?",
			},
			RelationSynonyms: map[RelationKind][]string{
				RelationIsA:      {"is a", "is a type of", "is a kind of"},
				RelationHasA:     {"has a", "contains", "includes"},
				RelationCan:      {"can", "is able to"},
				RelationRequires: {"requires", "needs", "depends on"},
				RelationLeadsTo:  {"leads to", "causes", "results in"},
			},
			FallbackPhrasing: "Which of the following statements is true?",
			Negations: []Substitution{
				{From: "is not", To: "is"},
				{From: "is", To: "is not"},
				{From: "cannot", To: "can"},
				{From: "can", To: "cannot"},
				{From: "never", To: "always"},
				{From: "always", To: "never"},
				{From: "none", To: "all"},
				{From: "all", To: "none"},
			},
			MinNegationWords: 4,
			TermPatterns: []string{
				`^(?:(?i:the|a|an)\s+)?([A-Za-z][A-Za-z0-9\- ]{0,60}?)\s+(?:is|are)\s+defined\s+as\b`,
				`^(?:(?i:the|a|an)\s+)?([A-Za-z][A-Za-z0-9\- ]{0,60}?)\s+refers?\s+to\b`,
				`^(?:(?i:the|a|an)\s+)?([A-Za-z][A-Za-z0-9\- ]{0,60}?)\s+(?:is|are)\s+(?:a|an|the)\s`,
				`^(?:(?i:the|a|an)\s+)?([A-Za-z][A-Za-z0-9\- ]{0,60}?)\s+means\b`,
			},
			ExampleTermPatterns: []string{
				`(?i)\b([A-Za-z][A-Za-z\- ]{2,60}?),?\s+such\s+as\b`,
				`(?i)\b([A-Za-z][A-Za-z\- ]{2,60}?),?\s+including\b`,
				`(?i)\bexamples?\s+of\s+([A-Za-z][A-Za-z\- ]{2,60}?)\s+(?:include|are|is)\b`,
				`(?i)\bfor\s+(?:example|instance),?\s+([A-Za-z][A-Za-z\- ]{2,60}?)\s+(?:is|are|can)\b`,
			},
			TrueFalsePhrasing:   "True or False: %s",
			ShortAnswerPhrasing: "What term is described by the following: %s",
		},
	}
}
