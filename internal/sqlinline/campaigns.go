package sqlinline

// QInsertCampaign writes a campaign and its assets in one statement so a
// polling worker never claims a campaign whose assets are missing. $10 is a
// JSON array of {id, position, assetType, intent, label, status}.
const QInsertCampaign = `--sql 6d94cc94-238d-42c9-98c6-a04762217435
with c as (
    insert into campaigns (id, user_id, title, status, brand, brand_lock_enabled, design_constraints, logo_image_url, created_at, updated_at)
    values ($1::uuid, $2, $3, $4, $5::jsonb, $6, $7::jsonb, $8, $9, $9)
    returning id
)
insert into campaign_assets (id, campaign_id, position, asset_type, intent, label, status)
select (a->>'id')::uuid, c.id, (a->>'position')::int, a->>'assetType', a->>'intent', a->>'label', a->>'status'
from c, jsonb_array_elements($10::jsonb) as a;
`

const QSelectCampaignByID = `--sql 30c25ce1-bed0-4b88-9b83-149e39aac380
select id::text, user_id, title, status, brand, brand_lock_enabled, design_constraints,
       logo_image_url, created_at, updated_at, consistency
from campaigns
where id = $1::uuid
limit 1;
`

const QSelectCampaignAssets = `--sql b0ede28a-f61e-4a64-9d35-e894e277290b
select id::text, asset_type, intent, label, status, kind, coalesce(render_id::text, ''), image_url,
       width, height, objective, messaging_framework, emotional_tone, composited
from campaign_assets
where campaign_id = $1::uuid
order by position asc;
`

// QClaimPendingCampaign flips the oldest pending campaign to generating and
// returns its id. Concurrent workers skip rows already locked.
const QClaimPendingCampaign = `--sql 09ff7bb2-4302-4509-8df4-5e01c748d95d
with next_campaign as (
    select id
    from campaigns
    where status = 'pending'
    order by created_at asc
    for update skip locked
    limit 1
)
update campaigns
set status = 'generating', updated_at = now()
where id in (select id from next_campaign)
returning id::text;
`

const QUpdateCampaignStatus = `--sql 5767f91d-bfe9-47f7-9e25-a9916af62309
update campaigns
set status = $2, updated_at = now()
where id = $1::uuid;
`

const QUpdateCampaignAsset = `--sql eb7fa4c6-e245-45dc-a49c-3a4a4c4fc46e
update campaign_assets
set status = $3,
    label = $4,
    kind = $5,
    render_id = nullif($6, '')::uuid,
    image_url = $7,
    width = $8,
    height = $9,
    objective = $10,
    messaging_framework = $11,
    emotional_tone = $12,
    composited = $13,
    updated_at = now()
where id = $1::uuid and campaign_id = $2::uuid;
`

const QUpdateCampaignConsistency = `--sql 21b0ac48-e2c3-471f-b642-0d2ab2cc5d57
update campaigns
set consistency = $2::jsonb, updated_at = now()
where id = $1::uuid;
`
