package sqlinline

const QInsertBrandMemory = `--sql dea9fc74-593b-4e99-a15d-c84a901bac7c
insert into brand_memory (brand_id, objective, messaging_framework, emotional_tone)
values ($1, $2, $3, $4);
`

const QSelectBrandMemory = `--sql f6ed0485-4417-4f88-97ed-b3667baa1e76
select objective, messaging_framework, emotional_tone
from brand_memory
where brand_id = $1
order by created_at desc, id desc
limit $2::int;
`

const QCountBrandMemory = `--sql 697f78f0-05d7-46f5-b9ea-911c58630458
select count(*)::int
from brand_memory
where brand_id = $1;
`
