// Package openai provides AI service implementations using OpenAI-compatible APIs.
//
// This package implements the ai.AIProvider interface using the langchaingo
// library to communicate with OpenAI or OpenAI-compatible services (such as
// Groq, Ollama, LM Studio, or vLLM).
//
// # Usage
//
//	config := ai.NewConfig(
//	    ai.WithExtractorHost("https://api.groq.com/openai/v1"),
//	    ai.WithExtractorModel("llama-3.3-70b-versatile"),
//	    ai.WithAPIKey(os.Getenv("GROQ_API_KEY")),
//	)
//
//	provider, err := openai.NewProvider(config)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	vector, err := provider.Embedder().EmbedText(ctx, "sample report")
//	entities, err := provider.EntityExtractor().ExtractEntities(ctx, report)
//	relations, err := provider.RelationExtractor().ExtractRelations(ctx, report, entities)
package openai
