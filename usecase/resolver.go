package usecase

import (
	"context"

	domainResolver "github.com/AzielCF/az-telebox/domains/resolver"
	"github.com/AzielCF/az-telebox/integrations/terabox"
	"github.com/AzielCF/az-telebox/integrations/unlock"
)

type resolverService struct {
	unlockClient *unlock.Client
	videoClient  *terabox.Client
}

// NewResolverService wires both upstream clients behind one interface.
func NewResolverService(unlockClient *unlock.Client, videoClient *terabox.Client) domainResolver.IResolverUsecase {
	return &resolverService{
		unlockClient: unlockClient,
		videoClient:  videoClient,
	}
}

func (s *resolverService) FetchUnlockLink(ctx context.Context) (string, error) {
	return s.unlockClient.FetchLink(ctx)
}

func (s *resolverService) ResolveVideo(ctx context.Context, link string) (domainResolver.VideoResult, error) {
	res, err := s.videoClient.Resolve(ctx, link)
	if err != nil {
		return domainResolver.VideoResult{}, err
	}
	return domainResolver.VideoResult{
		MediaURL:  res.MediaURL,
		Title:     res.Title,
		Thumbnail: res.Thumbnail,
	}, nil
}
