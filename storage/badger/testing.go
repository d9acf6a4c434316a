package badger

import "github.com/Ankur-krGarg/Cyber-Threat-dashboard/storage"

// NewMemoryRepositories creates in-memory repositories for testing.
// Returns docRepo, entityRepo, relationRepo, backend, and error.
// Caller must close the repos and the backend when done.
func NewMemoryRepositories() (storage.DocumentRepository, storage.EntityRepository, storage.RelationRepository, *Backend, error) {
	backend, err := OpenBackend("", true)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	docRepo, err := NewDocumentRepository(backend)
	if err != nil {
		backend.Close()
		return nil, nil, nil, nil, err
	}

	entityRepo, err := NewEntityRepository(backend)
	if err != nil {
		docRepo.Close()
		backend.Close()
		return nil, nil, nil, nil, err
	}

	relRepo, err := NewRelationRepository(backend)
	if err != nil {
		entityRepo.Close()
		docRepo.Close()
		backend.Close()
		return nil, nil, nil, nil, err
	}

	return docRepo, entityRepo, relRepo, backend, nil
}
